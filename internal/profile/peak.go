package profile

import (
	"fmt"
	"math"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/metric"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

// PeakPolicy holds the heuristics of the peak-performance estimate. The
// defaults are proxies, not validated constants, so they are configurable.
type PeakPolicy struct {
	// ScoreFields are tried in order; the first positive value is the
	// record's score.
	ScoreFields           []string `yaml:"score_fields"`
	DurationSecondsFields []string `yaml:"duration_seconds_fields"`
	DurationMinutesFields []string `yaml:"duration_minutes_fields"`

	DefaultHour             int          `yaml:"default_hour"`
	DefaultDay              time.Weekday `yaml:"default_day"`
	DefaultSessionMinutes   float64      `yaml:"default_session_minutes"`
	DefaultFatigueThreshold int          `yaml:"default_fatigue_threshold"`

	// FatigueThreshold = clamp(FatigueMin, FatigueMax, records / FatigueDivisor)
	FatigueDivisor int `yaml:"fatigue_divisor"`
	FatigueMin     int `yaml:"fatigue_min"`
	FatigueMax     int `yaml:"fatigue_max"`
}

// DefaultPeakPolicy returns the built-in heuristics.
func DefaultPeakPolicy() PeakPolicy {
	return PeakPolicy{
		ScoreFields: []string{
			"accuracy",
			"winRate",
			"cognitiveScore",
			"sessionOverview.accuracy",
			"sessionOverview.winRate",
			"sessionOverview.cognitiveScore",
		},
		DurationSecondsFields:   []string{"sessionOverview.durationSeconds", "durationSeconds"},
		DurationMinutesFields:   []string{"sessionOverview.durationMinutes", "durationMinutes"},
		DefaultHour:             10,
		DefaultDay:              time.Tuesday,
		DefaultSessionMinutes:   30,
		DefaultFatigueThreshold: 5,
		FatigueDivisor:          5,
		FatigueMin:              3,
		FatigueMax:              10,
	}
}

// RecordScore returns the record's 0-100 performance score.
func (p PeakPolicy) RecordScore(r domain.ActivityRecord) (float64, bool) {
	v, ok := metric.FirstPositive(r.Payload, p.ScoreFields...)
	if !ok {
		return 0, false
	}
	return stats.Clamp(v, 0, 100), true
}

func (p PeakPolicy) sessionMinutes(r domain.ActivityRecord) (float64, bool) {
	if v, ok := metric.FirstPositive(r.Payload, p.DurationSecondsFields...); ok {
		return v / 60, true
	}
	return metric.FirstPositive(r.Payload, p.DurationMinutesFields...)
}

// EstimatePeak finds the hour and weekday with the best mean score, the
// median session length and a fatigue threshold.
func EstimatePeak(records Records, loc *time.Location, policy PeakPolicy) domain.PeakPerformance {
	if loc == nil {
		loc = time.UTC
	}

	var (
		hourSum, hourCount [24]float64
		daySum, dayCount   [7]float64
		durations          []float64
		total              int
	)

	for _, recs := range records {
		for _, r := range recs {
			total++
			if mins, ok := policy.sessionMinutes(r); ok {
				durations = append(durations, mins)
			}

			ts, ok := RecordTime(r)
			if !ok {
				continue
			}
			score, ok := policy.RecordScore(r)
			if !ok {
				continue
			}
			local := ts.In(loc)
			hourSum[local.Hour()] += score
			hourCount[local.Hour()]++
			daySum[local.Weekday()] += score
			dayCount[local.Weekday()]++
		}
	}

	if total == 0 {
		return domain.PeakPerformance{
			BestTimeOfDay:          formatHour(policy.DefaultHour),
			BestHour:               policy.DefaultHour,
			BestDayOfWeek:          policy.DefaultDay.String(),
			OptimalSessionDuration: policy.DefaultSessionMinutes,
			FatigueThreshold:       policy.DefaultFatigueThreshold,
		}
	}

	bestHour := bestBucket(hourSum[:], hourCount[:], policy.DefaultHour)
	bestDay := bestBucket(daySum[:], dayCount[:], int(policy.DefaultDay))

	session := policy.DefaultSessionMinutes
	if len(durations) > 0 {
		session = stats.Round1(stats.Median(durations))
	}

	return domain.PeakPerformance{
		BestTimeOfDay:          formatHour(bestHour),
		BestHour:               bestHour,
		BestDayOfWeek:          time.Weekday(bestDay).String(),
		OptimalSessionDuration: session,
		FatigueThreshold:       fatigueThreshold(total, policy),
	}
}

// bestBucket returns the index with the highest mean; ties keep the earliest.
func bestBucket(sums, counts []float64, fallback int) int {
	best := -1
	bestMean := math.Inf(-1)
	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		if mean := sums[i] / counts[i]; mean > bestMean {
			best, bestMean = i, mean
		}
	}
	if best < 0 {
		return fallback
	}
	return best
}

func fatigueThreshold(total int, policy PeakPolicy) int {
	divisor := policy.FatigueDivisor
	if divisor <= 0 {
		divisor = 1
	}
	v := total / divisor
	if v < policy.FatigueMin {
		return policy.FatigueMin
	}
	if v > policy.FatigueMax {
		return policy.FatigueMax
	}
	return v
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", ((h%24)+24)%24)
}
