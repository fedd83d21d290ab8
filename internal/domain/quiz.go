package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuizResponses holds a user's answers to the schedule survey. Every field is
// a categorical option string; unknown or empty answers fall back to the
// defaults of the survey tables.
type QuizResponses struct {
	UserID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	NaturalWake       string    `gorm:"type:varchar(64)" json:"natural_wake"`
	FocusTime         string    `gorm:"type:varchar(64)" json:"focus_time"`
	TestTime          string    `gorm:"type:varchar(64)" json:"test_time"`
	SchoolStart       string    `gorm:"type:varchar(64)" json:"school_start"`
	HomeworkTime      string    `gorm:"type:varchar(64)" json:"homework_time"`
	MorningGrogginess string    `gorm:"type:varchar(64)" json:"morning_grogginess,omitempty"`
	WeekendBedtime    string    `gorm:"type:varchar(64)" json:"weekend_bedtime,omitempty"`
	SchoolWake        string    `gorm:"type:varchar(64)" json:"school_wake,omitempty"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (QuizResponses) TableName() string {
	return "quiz_responses"
}

// SaveQuizRequest is the request body for storing survey answers.
// @Description Schedule survey answers. Required fields drive the theoretical circadian phase.
type SaveQuizRequest struct {
	NaturalWake       string `json:"natural_wake" validate:"required,max=64" example:"Before 8 AM"`
	FocusTime         string `json:"focus_time" validate:"required,max=64" example:"Morning"`
	TestTime          string `json:"test_time" validate:"required,max=64" example:"Morning"`
	SchoolStart       string `json:"school_start" validate:"required,max=64" example:"8:00-8:30 AM"`
	HomeworkTime      string `json:"homework_time" validate:"required,max=64" example:"Evening"`
	MorningGrogginess string `json:"morning_grogginess,omitempty" validate:"omitempty,max=64" example:"Somewhat groggy"`
	WeekendBedtime    string `json:"weekend_bedtime,omitempty" validate:"omitempty,max=64" example:"1-2 hours later"`
	SchoolWake        string `json:"school_wake,omitempty" validate:"omitempty,max=64" example:"6-7 AM"`
}

func (r *SaveQuizRequest) ToModel(userID uuid.UUID) *QuizResponses {
	return &QuizResponses{
		UserID:            userID,
		NaturalWake:       r.NaturalWake,
		FocusTime:         r.FocusTime,
		TestTime:          r.TestTime,
		SchoolStart:       r.SchoolStart,
		HomeworkTime:      r.HomeworkTime,
		MorningGrogginess: r.MorningGrogginess,
		WeekendBedtime:    r.WeekendBedtime,
		SchoolWake:        r.SchoolWake,
	}
}
