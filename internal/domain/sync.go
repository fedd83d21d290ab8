package domain

import "time"

// ChronotypeType is the animal label for a natural circadian phase.
type ChronotypeType string

const (
	ChronotypeLion    ChronotypeType = "lion"
	ChronotypeBear    ChronotypeType = "bear"
	ChronotypeWolf    ChronotypeType = "wolf"
	ChronotypeDolphin ChronotypeType = "dolphin"
)

// CosinorResult is a single-harmonic 24h fit of one domain's samples.
type CosinorResult struct {
	Mesor     float64 `json:"mesor"`
	Amplitude float64 `json:"amplitude"`
	// Acrophase is the fitted peak hour in [0,24).
	Acrophase   float64 `json:"acrophase"`
	Reliability float64 `json:"reliability"`
	RSquared    float64 `json:"r_squared"`
	SampleCount int     `json:"sample_count"`
}

// SleepEntry is one night in wall-clock form.
type SleepEntry struct {
	Date     string `json:"date" example:"2024-01-16"`
	BedTime  string `json:"bed_time" example:"23:15"`
	WakeTime string `json:"wake_time" example:"07:05"`
	// Optional wake-ups during the night
	WakingEvents *int `json:"waking_events,omitempty"`
	// Optional quality on a 0-100 scale
	SleepQualityScore *float64 `json:"sleep_quality_score,omitempty"`
}

// SleepMetrics summarizes the sleep log used for the sync score.
type SleepMetrics struct {
	Entries             int      `json:"entries"`
	AverageDuration     float64  `json:"average_duration_hours"`
	AverageMidsleep     float64  `json:"average_midsleep_hour"`
	MidsleepStdDev      float64  `json:"midsleep_std_dev_hours"`
	Consistency         float64  `json:"consistency"`
	AverageQuality      *float64 `json:"average_quality,omitempty"`
	AverageWakingEvents *float64 `json:"average_waking_events,omitempty"`
	NaturalMidsleep     float64  `json:"natural_midsleep_hour"`
	ActualMidsleep      float64  `json:"actual_midsleep_hour"`
	SocialJetlagHours   float64  `json:"social_jetlag_hours"`
}

// AdaptiveComponents exposes the theoretical/observed blend behind the score.
type AdaptiveComponents struct {
	TheoreticalSchool float64                     `json:"theoretical_school"`
	TheoreticalStudy  float64                     `json:"theoretical_study"`
	ObservedSchool    float64                     `json:"observed_school"`
	ObservedStudy     float64                     `json:"observed_study"`
	SchoolSamples     int                         `json:"school_samples"`
	StudySamples      int                         `json:"study_samples"`
	Reliability       float64                     `json:"reliability"`
	DomainReliability map[CognitiveDomain]float64 `json:"domain_reliability"`
	BlendedSchool     float64                     `json:"blended_school"`
	BlendedStudy      float64                     `json:"blended_study"`
	TheoreticalPhase  float64                     `json:"theoretical_phase"`
	SchoolWindow      TimeWindow                  `json:"school_window"`
	StudyWindow       TimeWindow                  `json:"study_window"`
}

// TimeWindow is a daily window starting at Start (hour of day) lasting
// Duration hours.
type TimeWindow struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Contains reports whether hour h falls in the window, wrapping midnight.
func (w TimeWindow) Contains(h float64) bool {
	if w.Duration <= 0 {
		return false
	}
	offset := h - w.Start
	for offset < 0 {
		offset += 24
	}
	for offset >= 24 {
		offset -= 24
	}
	return offset < w.Duration
}

// Chronotype is the label for the learning phase plus how far the phase sits
// from the label's canonical center.
type Chronotype struct {
	Type           ChronotypeType             `json:"type" example:"bear"`
	Center         float64                    `json:"center" example:"10"`
	OutOfSyncHours float64                    `json:"out_of_sync_hours" example:"0.5"`
	Distances      map[ChronotypeType]float64 `json:"distances"`
}

// SyncResult is the circadian alignment of a person's schedule.
// @Description Circadian sync score and its components.
type SyncResult struct {
	SyncScore           int                `json:"sync_score" example:"74"`
	SchoolAlignment     int                `json:"school_alignment" example:"70"`
	StudyAlignment      int                `json:"study_alignment" example:"82"`
	LearningPhase       float64            `json:"learning_phase" example:"9.5"`
	SocialJetlagPenalty float64            `json:"social_jetlag_penalty" example:"0.91"`
	AdaptiveComponents  AdaptiveComponents `json:"adaptive_components"`
	SleepMetrics        SleepMetrics       `json:"sleep_metrics"`
	// Learning readiness at 15-minute resolution starting at midnight
	LearningTimeline []float64  `json:"learning_timeline"`
	Chronotype       Chronotype `json:"chronotype"`
	ComputedAt       time.Time  `json:"computed_at"`
}
