package circadian

import (
	"strings"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

// SurveyTables maps categorical survey answers to hours. Unknown or missing
// answers fall back to the Default* values. The zero value is not usable;
// start from DefaultSurveyTables.
type SurveyTables struct {
	// NaturalWake maps the free-day wake answer to a clock hour.
	NaturalWake        map[string]float64 `yaml:"natural_wake"`
	DefaultNaturalWake float64            `yaml:"default_natural_wake"`

	// FocusOffset and TestOffset are hours after waking.
	FocusOffset        map[string]float64 `yaml:"focus_offset"`
	DefaultFocusOffset float64            `yaml:"default_focus_offset"`
	TestOffset         map[string]float64 `yaml:"test_offset"`
	DefaultTestOffset  float64            `yaml:"default_test_offset"`

	// Phase nudges in hours. Missing answers nudge by 0.
	Grogginess     map[string]float64 `yaml:"grogginess"`
	WeekendBedtime map[string]float64 `yaml:"weekend_bedtime"`

	SchoolStart        map[string]float64 `yaml:"school_start"`
	DefaultSchoolStart float64            `yaml:"default_school_start"`
	SchoolDuration     float64            `yaml:"school_duration"`

	// HomeworkStart maps to a clock hour. The AfterSchool answer starts
	// AfterSchoolGap hours after school ends instead.
	HomeworkStart    map[string]float64 `yaml:"homework_start"`
	AfterSchool      string             `yaml:"after_school"`
	AfterSchoolGap   float64            `yaml:"after_school_gap"`
	DefaultHomework  string             `yaml:"default_homework"`
	HomeworkDuration float64            `yaml:"homework_duration"`

	// SchoolWake is the school-day wake hour. It has no default: an
	// unanswered question means school days follow the natural wake.
	SchoolWake map[string]float64 `yaml:"school_wake"`

	SleepNeed   float64 `yaml:"sleep_need"`
	WakeInertia float64 `yaml:"wake_inertia"`
}

// DefaultSurveyTables returns the built-in answer tables.
func DefaultSurveyTables() SurveyTables {
	return SurveyTables{
		NaturalWake: map[string]float64{
			"Before 8 AM": 7,
			"8-10 AM":     9,
			"10 AM-12 PM": 11,
			"After 12 PM": 13,
		},
		DefaultNaturalWake: 8,
		FocusOffset: map[string]float64{
			"Morning":   2,
			"Midday":    4,
			"Afternoon": 6,
			"Evening":   9,
			"Night":     12,
		},
		DefaultFocusOffset: 4,
		TestOffset: map[string]float64{
			"Morning":   2,
			"Midday":    4,
			"Afternoon": 6,
			"Evening":   9,
		},
		DefaultTestOffset: 4,
		Grogginess: map[string]float64{
			"Very groggy":     1,
			"Somewhat groggy": 0.5,
			"Alert":           -0.5,
		},
		WeekendBedtime: map[string]float64{
			"Same time":               0,
			"1-2 hours later":         0.5,
			"More than 2 hours later": 1,
			"Earlier":                 -0.5,
		},
		SchoolStart: map[string]float64{
			"Before 8 AM":  7.5,
			"8:00-8:30 AM": 8,
			"8:30-9:00 AM": 8.5,
			"After 9 AM":   9.25,
		},
		DefaultSchoolStart: 8,
		SchoolDuration:     6.5,
		HomeworkStart: map[string]float64{
			"Late afternoon": 16.5,
			"Evening":        19,
			"Late night":     21.5,
		},
		AfterSchool:      "Right after school",
		AfterSchoolGap:   0.5,
		DefaultHomework:  "Evening",
		HomeworkDuration: 2,
		SchoolWake: map[string]float64{
			"Before 6 AM": 5.5,
			"6-7 AM":      6.5,
			"7-8 AM":      7.5,
			"After 8 AM":  8.5,
		},
		SleepNeed:   8.5,
		WakeInertia: 1,
	}
}

// lookup matches an answer exactly, then case-insensitively.
func lookup(table map[string]float64, answer string) (float64, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, false
	}
	if v, ok := table[answer]; ok {
		return v, true
	}
	for k, v := range table {
		if strings.EqualFold(k, answer) {
			return v, true
		}
	}
	return 0, false
}

func lookupOr(table map[string]float64, answer string, fallback float64) float64 {
	if v, ok := lookup(table, answer); ok {
		return v
	}
	return fallback
}

// NaturalWakeHour is the free-day wake hour.
func (t SurveyTables) NaturalWakeHour(q domain.QuizResponses) float64 {
	return lookupOr(t.NaturalWake, q.NaturalWake, t.DefaultNaturalWake)
}

// SchoolWakeHour is the school-day wake hour, if answered.
func (t SurveyTables) SchoolWakeHour(q domain.QuizResponses) (float64, bool) {
	return lookup(t.SchoolWake, q.SchoolWake)
}

// WakeHour is the wake time that starts the wake-inertia window: school-day
// wake when answered, natural wake otherwise.
func (t SurveyTables) WakeHour(q domain.QuizResponses) float64 {
	if h, ok := t.SchoolWakeHour(q); ok {
		return h
	}
	return t.NaturalWakeHour(q)
}

// TheoreticalPhase is the survey-derived hour of peak learning readiness:
// wake + 0.6·focus + 0.4·test, nudged by grogginess and weekend bedtime.
func (t SurveyTables) TheoreticalPhase(q domain.QuizResponses) float64 {
	phase := t.NaturalWakeHour(q) +
		0.6*lookupOr(t.FocusOffset, q.FocusTime, t.DefaultFocusOffset) +
		0.4*lookupOr(t.TestOffset, q.TestTime, t.DefaultTestOffset)
	phase += lookupOr(t.Grogginess, q.MorningGrogginess, 0)
	phase += lookupOr(t.WeekendBedtime, q.WeekendBedtime, 0)
	return wrapHour(phase)
}

// SchoolWindow is the school day.
func (t SurveyTables) SchoolWindow(q domain.QuizResponses) domain.TimeWindow {
	return domain.TimeWindow{
		Start:    lookupOr(t.SchoolStart, q.SchoolStart, t.DefaultSchoolStart),
		Duration: t.SchoolDuration,
	}
}

// StudyWindow is the homework block.
func (t SurveyTables) StudyWindow(q domain.QuizResponses) domain.TimeWindow {
	answer := strings.TrimSpace(q.HomeworkTime)
	if _, ok := lookup(t.HomeworkStart, answer); !ok && !strings.EqualFold(answer, t.AfterSchool) {
		answer = t.DefaultHomework
	}

	var start float64
	if strings.EqualFold(answer, t.AfterSchool) {
		school := t.SchoolWindow(q)
		start = school.Start + school.Duration + t.AfterSchoolGap
	} else {
		start = lookupOr(t.HomeworkStart, answer, 0)
	}
	return domain.TimeWindow{Start: wrapHour(start), Duration: t.HomeworkDuration}
}

// NaturalMidsleep is the midpoint of a full night ending at the natural wake.
func (t SurveyTables) NaturalMidsleep(q domain.QuizResponses) float64 {
	return wrapHour(t.NaturalWakeHour(q) - t.SleepNeed/2)
}

// ScheduledMidsleep is the midpoint of a full night ending at the
// school-day wake, if answered.
func (t SurveyTables) ScheduledMidsleep(q domain.QuizResponses) (float64, bool) {
	wake, ok := t.SchoolWakeHour(q)
	if !ok {
		return 0, false
	}
	return wrapHour(wake - t.SleepNeed/2), true
}

// roundHour keeps phases readable in responses.
func roundHour(h float64) float64 {
	return stats.Round2(h)
}
