package profile

import (
	"math"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

const (
	qualitySampleTarget = 50
	qualityRecencyDays  = 30
)

// AssessQuality summarizes how trustworthy a profile is. It is informational
// only; nothing downstream gates on it.
func AssessQuality(scores map[domain.CognitiveDomain]domain.DomainScore, records Records, now time.Time) domain.DataQuality {
	total := records.Total()
	q := domain.DataQuality{
		TotalRecords:     total,
		SampleSizeFactor: stats.Round2(math.Min(1, float64(total)/qualitySampleTarget)),
	}

	var last time.Time
	for _, recs := range records {
		for _, r := range recs {
			if ts, ok := RecordTime(r); ok && ts.After(last) {
				last = ts
			}
		}
	}
	if !last.IsZero() {
		days := math.Max(0, now.Sub(last).Hours()/24)
		rounded := stats.Round1(days)
		q.DaysSinceLastRecord = &rounded
		q.RecencyFactor = stats.Round2(math.Max(0, 1-days/qualityRecencyDays))
	}

	var covered int
	var confidences []float64
	for _, d := range domain.CognitiveDomains {
		s := scores[d]
		if s.Current > 0 {
			covered++
		}
		confidences = append(confidences, s.Confidence)
	}
	coverage := 100 * float64(covered) / float64(len(domain.CognitiveDomains))
	q.DomainCoverage = stats.Round1(coverage)
	q.AverageConfidence = stats.Round2(stats.Mean(confidences))

	overall := (q.SampleSizeFactor + q.RecencyFactor + coverage/100 + stats.Mean(confidences)) / 4
	q.Reliability = int(math.Round(stats.Clamp(100*overall, 0, 100)))
	return q
}
