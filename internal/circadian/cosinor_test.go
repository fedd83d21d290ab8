package circadian

import (
	"math"
	"testing"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthetic(peak, amp float64, repeats int) []Sample {
	var out []Sample
	for r := 0; r < repeats; r++ {
		for h := 0; h < 24; h++ {
			t := float64(h)
			out = append(out, Sample{Hour: t, Value: 50 + amp*math.Cos(omega*(t-peak))})
		}
	}
	return out
}

func TestFit_RecoversSyntheticRhythm(t *testing.T) {
	got := Fit(synthetic(14, 10, 1))

	assert.InDelta(t, 50.0, got.Mesor, 1e-6)
	assert.InDelta(t, 10.0, got.Amplitude, 1e-6)
	assert.InDelta(t, 14.0, got.Acrophase, 1e-6)
	assert.InDelta(t, 1.0, got.RSquared, 1e-9)
	assert.InDelta(t, 24.0/44.0, got.Reliability, 1e-6)
	assert.Equal(t, 24, got.SampleCount)
}

func TestFit_ReliabilitySaturates(t *testing.T) {
	small := Fit(synthetic(14, 10, 1))
	large := Fit(synthetic(14, 10, 10))

	assert.Greater(t, large.Reliability, small.Reliability)
	assert.InDelta(t, MaxReliability, large.Reliability, 1e-9)
}

func TestFit_AcrophaseWraps(t *testing.T) {
	for _, peak := range []float64{0.5, 2, 20, 23.5} {
		got := Fit(synthetic(peak, 5, 1))
		assert.InDelta(t, peak, got.Acrophase, 1e-6, "peak %v", peak)
		assert.GreaterOrEqual(t, got.Acrophase, 0.0)
		assert.Less(t, got.Acrophase, 24.0)
	}
}

func TestFit_TooFewSamples(t *testing.T) {
	samples := []Sample{{Hour: 6, Value: 10}, {Hour: 12, Value: 90}, {Hour: 18, Value: 40}, {Hour: 0, Value: 70}}

	got := Fit(samples)

	assert.Equal(t, 0.0, got.Amplitude)
	assert.Equal(t, 12.0, got.Acrophase)
	assert.Equal(t, 0.0, got.Reliability)
	assert.Equal(t, 0.0, got.RSquared)
	assert.Equal(t, 4, got.SampleCount)
}

func TestFit_SingularWhenAllAtOneHour(t *testing.T) {
	var samples []Sample
	for i := 0; i < 8; i++ {
		samples = append(samples, Sample{Hour: 9, Value: float64(40 + i)})
	}

	got := Fit(samples)

	assert.Equal(t, Neutral(8), got)
}

func TestFit_FlatSeries(t *testing.T) {
	var samples []Sample
	for h := 0; h < 24; h += 2 {
		samples = append(samples, Sample{Hour: float64(h), Value: 60})
	}

	got := Fit(samples)

	assert.Equal(t, 0.0, got.RSquared)
	assert.Equal(t, 0.0, got.Reliability)
	assert.InDelta(t, 0.0, got.Amplitude, 1e-9)
}

func TestFitDomains(t *testing.T) {
	fits := FitDomains(map[domain.CognitiveDomain][]Sample{
		domain.DomainMemory: synthetic(10, 8, 1),
	})

	require.Len(t, fits, len(domain.CognitiveDomains))
	assert.InDelta(t, 10.0, fits[domain.DomainMemory].Acrophase, 1e-6)
	assert.Equal(t, Neutral(0), fits[domain.DomainReasoning])

	want := fits[domain.DomainMemory].Reliability / 5
	assert.InDelta(t, want, MeanReliability(fits), 1e-9)
}

func TestPredictAndShape(t *testing.T) {
	fit := domain.CosinorResult{Mesor: 50, Amplitude: 10, Acrophase: 14}

	assert.InDelta(t, 60.0, Predict(fit, 14), 1e-9)
	assert.InDelta(t, 40.0, Predict(fit, 2), 1e-9)
	assert.InDelta(t, 1.0, Shape(fit, 14), 1e-9)
	assert.InDelta(t, 0.0, Shape(fit, 2), 1e-9)
}
