package profile

import (
	"sort"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/internal/metric"
)

// Range is the raw-value interval mapped onto 0-100.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// MetricSource says how one activity metric feeds a domain.
type MetricSource struct {
	Activity string  `yaml:"activity"`
	Metric   string  `yaml:"metric"`
	Weight   float64 `yaml:"weight"`
	// Inverse scores lower raw values higher (reaction times, errors).
	Inverse bool   `yaml:"inverse"`
	Range   *Range `yaml:"range,omitempty"`
}

// DomainMapping is the static domain -> sources table.
type DomainMapping map[domain.CognitiveDomain][]MetricSource

// Activities returns every activity referenced by the mapping, sorted.
func (m DomainMapping) Activities() []string {
	seen := make(map[string]struct{})
	for _, sources := range m {
		for _, src := range sources {
			seen[src.Activity] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// HasActivity reports whether activity feeds any domain.
func (m DomainMapping) HasActivity(activity string) bool {
	for _, sources := range m {
		for _, src := range sources {
			if src.Activity == activity {
				return true
			}
		}
	}
	return false
}

// DefaultDomainMapping is the built-in table for the five cognitive domains.
func DefaultDomainMapping() DomainMapping {
	return DomainMapping{
		domain.DomainMemory: {
			{Activity: "memory_match", Metric: "accuracy", Weight: 0.5},
			{Activity: "sequence_recall", Metric: "sessionOverview.longestSequence", Weight: 0.3, Range: &Range{Min: 2, Max: 12}},
			{Activity: "word_recall", Metric: "recallRate", Weight: 0.2},
		},
		domain.DomainAttention: {
			{Activity: "focus_flow", Metric: "accuracy", Weight: 0.6},
			{Activity: "focus_flow", Metric: "sessionOverview.lapses", Weight: 0.2, Inverse: true, Range: &Range{Min: 0, Max: 20}},
			{Activity: "memory_match", Metric: "sessionOverview.focusScore", Weight: 0.2},
		},
		domain.DomainProcessingSpeed: {
			{Activity: "speed_sort", Metric: "sessionOverview.averageReactionTime", Weight: 0.7, Inverse: true, Range: &Range{Min: 200, Max: 1500}},
			{Activity: "focus_flow", Metric: "sessionOverview.averageReactionTime", Weight: 0.3, Inverse: true, Range: &Range{Min: 200, Max: 1500}},
		},
		domain.DomainExecutiveFunction: {
			{Activity: "task_switch", Metric: "accuracy", Weight: 0.6},
			{Activity: "task_switch", Metric: "sessionOverview.switchCost", Weight: 0.4, Inverse: true, Range: &Range{Min: 0, Max: 800}},
		},
		domain.DomainReasoning: {
			{Activity: "pattern_logic", Metric: "accuracy", Weight: 0.6},
			{Activity: "pattern_logic", Metric: "winRate", Weight: 0.2},
			{Activity: "sequence_recall", Metric: "cognitiveScore", Weight: 0.2},
		},
	}
}

// RecordTime returns the time a record happened: the store timestamp when
// present, otherwise the payload's session overview timestamp.
func RecordTime(r domain.ActivityRecord) (time.Time, bool) {
	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		return r.CreatedAt.UTC(), true
	}
	return metric.Timestamp(r.Payload, "sessionOverview.timestamp")
}
