package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CognitiveDomain names a cognitive construct scored 0-100.
type CognitiveDomain string

const (
	DomainMemory            CognitiveDomain = "memory"
	DomainAttention         CognitiveDomain = "attention"
	DomainProcessingSpeed   CognitiveDomain = "processing_speed"
	DomainExecutiveFunction CognitiveDomain = "executive_function"
	DomainReasoning         CognitiveDomain = "reasoning"
)

// CognitiveDomains lists the five scored domains in display order.
var CognitiveDomains = []CognitiveDomain{
	DomainMemory,
	DomainAttention,
	DomainProcessingSpeed,
	DomainExecutiveFunction,
	DomainReasoning,
}

// IsCognitiveDomain reports whether d is one of the scored domains.
func IsCognitiveDomain(d CognitiveDomain) bool {
	for _, known := range CognitiveDomains {
		if d == known {
			return true
		}
	}
	return false
}

// Trajectory labels the direction of a domain's weekly change.
type Trajectory string

const (
	TrajectoryImproving Trajectory = "improving"
	TrajectoryDeclining Trajectory = "declining"
	TrajectoryStable    Trajectory = "stable"
)

// DomainScore is one domain's windowed scores.
// @Description Normalized 0-100 scores for one cognitive domain.
type DomainScore struct {
	Current          int        `json:"current" example:"72"`
	Average7d        int        `json:"average_7d" example:"70"`
	Average30d       int        `json:"average_30d" example:"66"`
	PersonalBest     int        `json:"personal_best" example:"81"`
	PersonalBestDate *time.Time `json:"personal_best_date,omitempty"`
	// Confidence in the current score (0-1)
	Confidence  float64 `json:"confidence" example:"0.74"`
	SampleCount int     `json:"sample_count" example:"14"`
}

// GameContribution describes how one activity fed one domain in this run.
type GameContribution struct {
	Domain       CognitiveDomain `json:"domain"`
	Activity     string          `json:"activity"`
	Weight       float64         `json:"weight"`
	SampleCount  int             `json:"sample_count"`
	AverageScore float64         `json:"average_score"`
	// Reliability is 1 - CV of the raw metric values, clamped to [0,1].
	Reliability float64 `json:"reliability"`
}

// TrendData compares the current windows with the previous snapshot.
type TrendData struct {
	WeeklyChange     float64    `json:"weekly_change"`
	MonthlyChange    float64    `json:"monthly_change"`
	YearlyChange     float64    `json:"yearly_change"`
	Trajectory       Trajectory `json:"trajectory"`
	Volatility       float64    `json:"volatility"`
	ConsistencyScore float64    `json:"consistency_score"`
	Momentum         float64    `json:"momentum"`
}

// PeakPerformance is the best observed time to train.
type PeakPerformance struct {
	BestTimeOfDay string `json:"best_time_of_day" example:"10:00"`
	BestHour      int    `json:"best_hour" example:"10"`
	BestDayOfWeek string `json:"best_day_of_week" example:"Tuesday"`
	// Median session length in minutes
	OptimalSessionDuration float64 `json:"optimal_session_duration" example:"30"`
	FatigueThreshold       int     `json:"fatigue_threshold" example:"5"`
}

// CrossActivityMetrics summarizes engagement across all activities.
type CrossActivityMetrics struct {
	TotalSessions     int     `json:"total_sessions"`
	ActiveDays30d     int     `json:"active_days_30d"`
	ActivitiesPlayed  int     `json:"activities_played"`
	ActivityDiversity float64 `json:"activity_diversity"`
	OverallScore      float64 `json:"overall_score"`
	DomainBalance     float64 `json:"domain_balance"`
}

// DataQuality describes how much the profile can be trusted.
type DataQuality struct {
	TotalRecords        int      `json:"total_records"`
	SampleSizeFactor    float64  `json:"sample_size_factor"`
	DaysSinceLastRecord *float64 `json:"days_since_last_record,omitempty"`
	RecencyFactor       float64  `json:"recency_factor"`
	DomainCoverage      float64  `json:"domain_coverage"`
	AverageConfidence   float64  `json:"average_confidence"`
	// Overall reliability (0-100)
	Reliability int `json:"reliability"`
}

// UnifiedProfile is a person's cognitive profile at one point in time.
// @Description Aggregated cognitive profile.
type UnifiedProfile struct {
	UserID          uuid.UUID                         `json:"user_id"`
	ComputedAt      time.Time                         `json:"computed_at"`
	Domains         map[CognitiveDomain]DomainScore   `json:"domains"`
	Contributions   []GameContribution                `json:"contributions"`
	Trends          map[CognitiveDomain]TrendData     `json:"trends"`
	Percentiles     map[CognitiveDomain]int           `json:"percentiles"`
	PeakPerformance PeakPerformance                   `json:"peak_performance"`
	CrossActivity   CrossActivityMetrics              `json:"cross_activity"`
	DataQuality     DataQuality                       `json:"data_quality"`
	Cosinor         map[CognitiveDomain]CosinorResult `json:"cosinor,omitempty"`
}

// ProfileSnapshot is the persisted latest profile and sync result of a user.
type ProfileSnapshot struct {
	UserID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Profile    datatypes.JSON `gorm:"type:jsonb;not null" json:"profile"`
	Sync       datatypes.JSON `gorm:"type:jsonb" json:"sync"`
	ComputedAt time.Time      `gorm:"not null" json:"computed_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ProfileSnapshot) TableName() string {
	return "profile_snapshots"
}

// DomainScoreSnapshot mirrors one domain of the latest profile in a
// queryable row for population percentiles and leaderboards.
type DomainScoreSnapshot struct {
	UserID     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Domain     CognitiveDomain `gorm:"type:varchar(32);primaryKey;index:idx_domain_scores_domain_current,priority:1" json:"domain"`
	Current    int             `gorm:"not null;index:idx_domain_scores_domain_current,priority:2,sort:desc" json:"current"`
	Confidence float64         `gorm:"not null" json:"confidence"`
	ComputedAt time.Time       `gorm:"not null" json:"computed_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DomainScoreSnapshot) TableName() string {
	return "domain_score_snapshots"
}

// LeaderboardEntry is one ranked row of a domain leaderboard.
type LeaderboardEntry struct {
	Rank       int       `json:"rank" example:"1"`
	UserID     uuid.UUID `json:"user_id"`
	Score      int       `json:"score" example:"91"`
	Percentile int       `json:"percentile" example:"99"`
	Confidence float64   `json:"confidence" example:"0.82"`
}

// LeaderboardResponse is the response for the leaderboard endpoint.
type LeaderboardResponse struct {
	Domain  CognitiveDomain    `json:"domain" example:"memory"`
	Entries []LeaderboardEntry `json:"entries"`
}

// RecomputeResponse is returned by the on-demand recompute endpoint.
type RecomputeResponse struct {
	Profile UnifiedProfile `json:"profile"`
	Sync    SyncResult     `json:"sync"`
}

// BatchReport summarizes one full-population recompute.
type BatchReport struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	FailedIDs []uuid.UUID   `json:"failed_ids,omitempty"`
}
