package profile

import (
	"math"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

// trajectoryThreshold is the weekly change (percent) beyond which a domain
// counts as improving or declining.
const trajectoryThreshold = 5.0

// Trend derives change statistics from a domain's current windows and the
// same domain in the previous snapshot. A nil previous score compares the
// current windows with themselves, giving 0% change.
func Trend(current domain.DomainScore, previous *domain.DomainScore) domain.TrendData {
	prev7d := float64(current.Average7d)
	prev30d := float64(current.Average30d)
	if previous != nil {
		prev7d = float64(previous.Average7d)
		prev30d = float64(previous.Average30d)
	}

	weekly := percentChange(float64(current.Average7d), prev7d)
	monthly := percentChange(float64(current.Average30d), prev30d)

	var present []float64
	for _, v := range []int{current.Current, current.Average7d, current.Average30d} {
		if v > 0 {
			present = append(present, float64(v))
		}
	}
	volatility := stats.StdDev(present)

	return domain.TrendData{
		WeeklyChange:     stats.Round1(weekly),
		MonthlyChange:    stats.Round1(monthly),
		YearlyChange:     stats.Round1(monthly * 12),
		Trajectory:       trajectory(weekly),
		Volatility:       stats.Round1(volatility),
		ConsistencyScore: stats.Round1(math.Max(0, 100-volatility)),
		Momentum:         stats.Round1(weekly - monthly),
	}
}

// Trends computes Trend for every domain of scores.
func Trends(scores map[domain.CognitiveDomain]domain.DomainScore, prior *domain.UnifiedProfile) map[domain.CognitiveDomain]domain.TrendData {
	out := make(map[domain.CognitiveDomain]domain.TrendData, len(scores))
	for d, score := range scores {
		var previous *domain.DomainScore
		if prior != nil {
			if p, ok := prior.Domains[d]; ok {
				previous = &p
			}
		}
		out[d] = Trend(score, previous)
	}
	return out
}

func percentChange(current, previous float64) float64 {
	return (current - previous) / math.Max(previous, 1) * 100
}

func trajectory(weeklyChange float64) domain.Trajectory {
	switch {
	case weeklyChange > trajectoryThreshold:
		return domain.TrajectoryImproving
	case weeklyChange < -trajectoryThreshold:
		return domain.TrajectoryDeclining
	default:
		return domain.TrajectoryStable
	}
}
