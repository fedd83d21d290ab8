package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityRecord is one timestamped outcome of a tracked activity (a game
// session, a drill). The payload is stored as produced; scoring reads fields
// from it by path.
type ActivityRecord struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_records_user_activity_created" json:"user_id"`
	Activity string         `gorm:"type:varchar(64);not null;index:idx_activity_records_user_activity_created" json:"activity"`
	Payload  datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	// CreatedAt is the store-native timestamp. It may be nil for imported
	// records, in which case the payload's session overview is consulted.
	CreatedAt *time.Time `gorm:"index:idx_activity_records_user_activity_created,sort:desc" json:"created_at,omitempty"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ActivityRecord) TableName() string {
	return "activity_records"
}

// CreateActivityRecordRequest is the request body for ingesting telemetry.
// @Description Raw activity outcome as produced by a game or drill.
type CreateActivityRecordRequest struct {
	// Activity-specific payload, stored verbatim
	Payload json.RawMessage `json:"payload" validate:"required" swaggertype:"object"`
	// Optional completion time (defaults to now)
	CreatedAt *time.Time `json:"created_at,omitempty" example:"2024-03-04T09:30:00Z"`
}

// ActivityRecordResponse is returned after ingestion.
type ActivityRecordResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Activity  string          `json:"activity"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}

func (r *ActivityRecord) ToResponse() ActivityRecordResponse {
	return ActivityRecordResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Activity:  r.Activity,
		Payload:   json.RawMessage(r.Payload),
		CreatedAt: r.CreatedAt,
	}
}
