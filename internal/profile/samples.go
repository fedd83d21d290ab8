package profile

import (
	"math"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/circadian"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/metric"
)

// LocalHour is the fractional hour of ts in loc.
func LocalHour(ts time.Time, loc *time.Location) float64 {
	if loc == nil {
		loc = time.UTC
	}
	l := ts.In(loc)
	return float64(l.Hour()) + float64(l.Minute())/60 + float64(l.Second())/3600
}

// DomainSamples scores every timestamped record on each domain it feeds.
// A record's domain score is the weighted mean of its normalized metrics for
// that domain; records without any positive metric are skipped.
func (a *Aggregator) DomainSamples(records Records, loc *time.Location) map[domain.CognitiveDomain][]circadian.Sample {
	out := make(map[domain.CognitiveDomain][]circadian.Sample, len(a.mapping))

	for d, sources := range a.mapping {
		byActivity := make(map[string][]MetricSource)
		var order []string
		for _, src := range sources {
			if _, ok := byActivity[src.Activity]; !ok {
				order = append(order, src.Activity)
			}
			byActivity[src.Activity] = append(byActivity[src.Activity], src)
		}

		for _, activity := range order {
			for _, r := range records[activity] {
				ts, ok := RecordTime(r)
				if !ok {
					continue
				}
				score, ok := recordDomainScore(r, byActivity[activity])
				if !ok {
					continue
				}
				out[d] = append(out[d], circadian.Sample{Hour: LocalHour(ts, loc), Value: score})
			}
		}
	}
	return out
}

func recordDomainScore(r domain.ActivityRecord, sources []MetricSource) (float64, bool) {
	var sum, weight float64
	for _, src := range sources {
		v := metric.Value(r.Payload, src.Metric)
		if math.IsNaN(v) || v <= 0 {
			continue
		}
		sum += normalizeSource(v, src) * src.Weight
		weight += src.Weight
	}
	if weight == 0 {
		return 0, false
	}
	return sum / weight, true
}

// ScoreSamples places every scored record at its local hour, for comparing
// performance inside schedule windows.
func ScoreSamples(records Records, loc *time.Location, policy PeakPolicy) []circadian.Sample {
	var out []circadian.Sample
	for _, recs := range records {
		for _, r := range recs {
			ts, ok := RecordTime(r)
			if !ok {
				continue
			}
			score, ok := policy.RecordScore(r)
			if !ok {
				continue
			}
			out = append(out, circadian.Sample{Hour: LocalHour(ts, loc), Value: score})
		}
	}
	return out
}
