package circadian

import (
	"math"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

const (
	dipCenter = 17.0
	dipSigma  = 2.0

	circadianWeight = 0.8
	dipWeight       = 0.2

	windowSamples = 60
)

// Readiness is the theoretical learning-readiness curve L(t).
type Readiness struct {
	Phase       float64
	WakeHour    float64
	WakeInertia float64
}

// Inertia is 0 during the hour(s) right after waking and 1 otherwise.
func (r Readiness) Inertia(t float64) float64 {
	w := domain.TimeWindow{Start: r.WakeHour, Duration: r.WakeInertia}
	if w.Contains(wrapHour(t)) {
		return 0
	}
	return 1
}

// At evaluates L(t) = I(t)·(0.8·Lc + 0.2·B) where Lc peaks at the phase and
// B dips around 17:00.
func (r Readiness) At(t float64) float64 {
	lc := 0.5 * (1 + math.Cos(omega*(t-r.Phase)))
	d := circularDistance(t, dipCenter)
	b := 1 - math.Exp(-d*d/(2*dipSigma*dipSigma))
	return stats.Clamp01(r.Inertia(t) * (circadianWeight*lc + dipWeight*b))
}

// WindowMean approximates the mean of f over w with a midpoint sum.
func WindowMean(f func(float64) float64, w domain.TimeWindow) float64 {
	if w.Duration <= 0 {
		return 0
	}
	step := w.Duration / windowSamples
	var sum float64
	for i := 0; i < windowSamples; i++ {
		sum += f(wrapHour(w.Start + (float64(i)+0.5)*step))
	}
	return sum / windowSamples
}

// ObservedAlignment squashes the mean score of samples inside w through a
// logistic centred on 50. ok is false when no sample falls inside.
func ObservedAlignment(samples []Sample, w domain.TimeWindow) (alignment float64, n int, ok bool) {
	var values []float64
	for _, s := range samples {
		if w.Contains(wrapHour(s.Hour)) {
			values = append(values, s.Value)
		}
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	m := stats.Mean(values)
	return 1 / (1 + math.Exp(-0.1*(m-50))), len(values), true
}
