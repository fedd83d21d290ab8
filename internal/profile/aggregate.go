package profile

import (
	"math"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/metric"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

// Window selects which records a domain score is computed from.
type Window string

const (
	// WindowInstant uses every record supplied to the aggregator.
	WindowInstant Window = "instant"
	Window7d      Window = "7d"
	Window30d     Window = "30d"
)

const (
	confidenceSampleTarget = 10
	confidenceSampleWeight = 0.6
	confidenceConsistency  = 0.4
)

// Records groups raw records by activity name.
type Records map[string][]domain.ActivityRecord

// Total returns the number of records across activities.
func (r Records) Total() int {
	n := 0
	for _, recs := range r {
		n += len(recs)
	}
	return n
}

// WindowScore is a domain score for one window.
type WindowScore struct {
	Score         int
	Confidence    float64
	SampleCount   int
	Contributions []domain.GameContribution
}

// Aggregator turns raw records into normalized domain scores.
type Aggregator struct {
	mapping DomainMapping
	now     time.Time
}

// NewAggregator creates an Aggregator evaluating windows relative to now.
func NewAggregator(mapping DomainMapping, now time.Time) *Aggregator {
	return &Aggregator{mapping: mapping, now: now}
}

// Score computes one domain's score over a window.
func (a *Aggregator) Score(d domain.CognitiveDomain, records Records, window Window) WindowScore {
	var (
		weighted    float64
		totalWeight float64
		sampleCount int
		normalized  []float64
		contrib     contributionSet
	)

	for _, src := range a.mapping[d] {
		values := a.extract(records[src.Activity], src.Metric, window)
		if len(values) == 0 {
			continue
		}

		norm := normalizeSource(stats.Mean(values), src)
		weighted += norm * src.Weight
		totalWeight += src.Weight
		sampleCount += len(values)

		for _, v := range values {
			normalized = append(normalized, normalizeSource(v, src))
		}

		contrib.add(d, src, len(values), norm, 1-math.Min(1, stats.CV(values)))
	}

	result := WindowScore{SampleCount: sampleCount, Contributions: contrib.list()}
	if totalWeight > 0 {
		result.Score = int(math.Round(stats.Clamp(weighted/totalWeight, 0, 100)))
	}
	result.Confidence = confidence(normalized)
	return result
}

// Aggregate computes every mapped domain over the three windows. The prior
// profile, when present, supplies personal bests.
func (a *Aggregator) Aggregate(records Records, prior *domain.UnifiedProfile) (map[domain.CognitiveDomain]domain.DomainScore, []domain.GameContribution) {
	scores := make(map[domain.CognitiveDomain]domain.DomainScore, len(domain.CognitiveDomains))
	var contributions []domain.GameContribution

	for _, d := range domain.CognitiveDomains {
		instant := a.Score(d, records, WindowInstant)
		week := a.Score(d, records, Window7d)
		month := a.Score(d, records, Window30d)

		score := domain.DomainScore{
			Current:     instant.Score,
			Average7d:   week.Score,
			Average30d:  month.Score,
			Confidence:  stats.Round2(instant.Confidence),
			SampleCount: instant.SampleCount,
		}
		score.PersonalBest, score.PersonalBestDate = a.personalBest(d, instant.Score, prior)

		scores[d] = score
		contributions = append(contributions, instant.Contributions...)
	}

	return scores, contributions
}

func (a *Aggregator) personalBest(d domain.CognitiveDomain, current int, prior *domain.UnifiedProfile) (int, *time.Time) {
	now := a.now
	if prior != nil {
		if prev, ok := prior.Domains[d]; ok && prev.PersonalBest >= current {
			return prev.PersonalBest, prev.PersonalBestDate
		}
	}
	if current == 0 {
		return 0, nil
	}
	return current, &now
}

// extract returns the positive metric values of records inside window.
func (a *Aggregator) extract(records []domain.ActivityRecord, path string, window Window) []float64 {
	var values []float64
	for _, r := range records {
		ts, ok := RecordTime(r)
		if !ok || !a.inWindow(ts, window) {
			continue
		}
		v := metric.Value(r.Payload, path)
		if math.IsNaN(v) || v <= 0 {
			continue
		}
		values = append(values, v)
	}
	return values
}

func (a *Aggregator) inWindow(ts time.Time, window Window) bool {
	switch window {
	case Window7d:
		return !ts.Before(a.now.AddDate(0, 0, -7))
	case Window30d:
		return !ts.Before(a.now.AddDate(0, 0, -30))
	default:
		return true
	}
}

// contributionSet merges sources that share an activity into one
// contribution, weighting averages by source weight.
type contributionSet struct {
	order []string
	byAct map[string]*contributionAcc
}

type contributionAcc struct {
	domain      domain.CognitiveDomain
	weight      float64
	samples     int
	scoreSum    float64
	reliability float64
}

func (c *contributionSet) add(d domain.CognitiveDomain, src MetricSource, samples int, score, reliability float64) {
	if c.byAct == nil {
		c.byAct = make(map[string]*contributionAcc)
	}
	acc, ok := c.byAct[src.Activity]
	if !ok {
		acc = &contributionAcc{domain: d}
		c.byAct[src.Activity] = acc
		c.order = append(c.order, src.Activity)
	}
	acc.weight += src.Weight
	acc.samples += samples
	acc.scoreSum += score * src.Weight
	acc.reliability += reliability * src.Weight
}

func (c *contributionSet) list() []domain.GameContribution {
	out := make([]domain.GameContribution, 0, len(c.order))
	for _, activity := range c.order {
		acc := c.byAct[activity]
		gc := domain.GameContribution{
			Domain:      acc.domain,
			Activity:    activity,
			Weight:      acc.weight,
			SampleCount: acc.samples,
		}
		if acc.weight > 0 {
			gc.AverageScore = stats.Round1(acc.scoreSum / acc.weight)
			gc.Reliability = stats.Round2(stats.Clamp01(acc.reliability / acc.weight))
		}
		out = append(out, gc)
	}
	return out
}

// normalizeSource maps a raw metric value onto 0-100 per the source's rules.
func normalizeSource(v float64, src MetricSource) float64 {
	switch {
	case src.Range != nil && src.Inverse:
		return stats.InverseNormalize(v, src.Range.Min, src.Range.Max)
	case src.Range != nil:
		return stats.Normalize(v, src.Range.Min, src.Range.Max)
	case src.Inverse:
		return stats.Clamp(100-v, 0, 100)
	default:
		return stats.Clamp(v, 0, 100)
	}
}

func confidence(normalized []float64) float64 {
	n := len(normalized)
	if n == 0 {
		return 0
	}

	consistency := 1.0
	if n >= 2 {
		consistency = stats.Clamp01((100 - stats.StdDev(normalized)) / 100)
	}

	sample := math.Min(1, float64(n)/confidenceSampleTarget)
	return stats.Clamp01(confidenceSampleWeight*sample + confidenceConsistency*consistency)
}
