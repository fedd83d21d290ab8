// Package profile turns raw activity records into a UnifiedProfile. Nothing
// here touches storage: prior state and population come in as arguments.
package profile

import (
	"time"

	"github.com/blaisecz/cognitive-sync/internal/circadian"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/google/uuid"
)

// Input is everything one profile is built from.
type Input struct {
	UserID  uuid.UUID
	Records Records
	// Prior is the previous snapshot; nil on the first run.
	Prior *domain.UnifiedProfile
	// Population is nil when the snapshot could not be loaded.
	Population Population
	Location   *time.Location
	Now        time.Time
}

// Builder assembles profiles from a fixed mapping and peak policy.
type Builder struct {
	mapping DomainMapping
	peak    PeakPolicy
}

// NewBuilder creates a Builder.
func NewBuilder(mapping DomainMapping, peak PeakPolicy) *Builder {
	return &Builder{mapping: mapping, peak: peak}
}

// Mapping returns the domain mapping the builder scores with.
func (b *Builder) Mapping() DomainMapping {
	return b.mapping
}

// Build computes a profile. It never fails: missing data produces zero
// scores, neutral percentiles and default peak values.
func (b *Builder) Build(in Input) *domain.UnifiedProfile {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	agg := NewAggregator(b.mapping, in.Now)
	scores, contributions := agg.Aggregate(in.Records, in.Prior)
	if contributions == nil {
		contributions = []domain.GameContribution{}
	}

	return &domain.UnifiedProfile{
		UserID:          in.UserID,
		ComputedAt:      in.Now,
		Domains:         scores,
		Contributions:   contributions,
		Trends:          Trends(scores, in.Prior),
		Percentiles:     Percentiles(scores, in.Population),
		PeakPerformance: EstimatePeak(in.Records, loc, b.peak),
		CrossActivity:   CrossActivity(scores, in.Records, b.mapping, loc, in.Now),
		DataQuality:     AssessQuality(scores, in.Records, in.Now),
		Cosinor:         circadian.FitDomains(agg.DomainSamples(in.Records, loc)),
	}
}

// Observations are the per-record performance scores the sync calculator
// compares against schedule windows.
func (b *Builder) Observations(records Records, loc *time.Location) []circadian.Sample {
	return ScoreSamples(records, loc, b.peak)
}
