package profile

import (
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

// CrossActivity summarizes engagement and balance across activities.
func CrossActivity(scores map[domain.CognitiveDomain]domain.DomainScore, records Records, mapping DomainMapping, loc *time.Location, now time.Time) domain.CrossActivityMetrics {
	if loc == nil {
		loc = time.UTC
	}

	m := domain.CrossActivityMetrics{TotalSessions: records.Total()}

	days := make(map[string]struct{})
	since := now.AddDate(0, 0, -30)
	for _, recs := range records {
		if len(recs) > 0 {
			m.ActivitiesPlayed++
		}
		for _, r := range recs {
			ts, ok := RecordTime(r)
			if !ok || ts.Before(since) {
				continue
			}
			days[ts.In(loc).Format("2006-01-02")] = struct{}{}
		}
	}
	m.ActiveDays30d = len(days)

	if known := len(mapping.Activities()); known > 0 {
		m.ActivityDiversity = stats.Round1(stats.Clamp(100*float64(m.ActivitiesPlayed)/float64(known), 0, 100))
	}

	var currents []float64
	for _, d := range domain.CognitiveDomains {
		if c := scores[d].Current; c > 0 {
			currents = append(currents, float64(c))
		}
	}
	if len(currents) > 0 {
		m.OverallScore = stats.Round1(stats.Mean(currents))
		m.DomainBalance = stats.Round1(stats.Clamp(100-stats.StdDev(currents), 0, 100))
	}
	return m
}
