// Package circadian scores how well a person's schedule matches their
// natural rhythm of cognitive readiness.
package circadian

import (
	"math"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

const (
	// Period of the fitted rhythm in hours.
	Period = 24.0

	// MinSamples is the smallest sample count a cosinor fit is attempted on.
	MinSamples = 5
	// MaxReliability caps how far behavioural data may override the survey.
	MaxReliability = 0.8
	// ReliabilityPrior is the sample count at which reliability reaches half
	// of R².
	ReliabilityPrior = 20.0

	neutralAcrophase = 12.0
	singularEpsilon  = 1e-9
)

var omega = 2 * math.Pi / Period

// Sample is one observation at a fractional local hour.
type Sample struct {
	Hour  float64
	Value float64
}

// Neutral is the fit reported when the data cannot support one.
func Neutral(n int) domain.CosinorResult {
	return domain.CosinorResult{Acrophase: neutralAcrophase, SampleCount: n}
}

// Fit solves y(t) = M + a·cos(ωt) + b·sin(ωt) by least squares. Fewer than
// MinSamples samples, or samples that cannot separate the two harmonics
// (all at one hour), yield Neutral.
func Fit(samples []Sample) domain.CosinorResult {
	n := len(samples)
	if n < MinSamples {
		return Neutral(n)
	}

	cs := make([]float64, n)
	ss := make([]float64, n)
	ys := make([]float64, n)
	for i, s := range samples {
		cs[i] = math.Cos(omega * s.Hour)
		ss[i] = math.Sin(omega * s.Hour)
		ys[i] = s.Value
	}
	cMean, sMean, yMean := stats.Mean(cs), stats.Mean(ss), stats.Mean(ys)

	var scc, sss, scs, scy, ssy float64
	for i := range samples {
		dc, ds, dy := cs[i]-cMean, ss[i]-sMean, ys[i]-yMean
		scc += dc * dc
		sss += ds * ds
		scs += dc * ds
		scy += dc * dy
		ssy += ds * dy
	}

	det := scc*sss - scs*scs
	if math.Abs(det) < singularEpsilon {
		return Neutral(n)
	}

	a := (scy*sss - ssy*scs) / det
	b := (ssy*scc - scy*scs) / det
	mesor := yMean - a*cMean - b*sMean

	var ssRes, ssTot float64
	for i := range samples {
		pred := mesor + a*cs[i] + b*ss[i]
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - yMean) * (ys[i] - yMean)
	}
	var r2 float64
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return domain.CosinorResult{
		Mesor:       mesor,
		Amplitude:   math.Hypot(a, b),
		Acrophase:   wrapHour(math.Atan2(b, a) * Period / (2 * math.Pi)),
		Reliability: math.Min(MaxReliability, float64(n)/(float64(n)+ReliabilityPrior)*math.Max(0, r2)),
		RSquared:    r2,
		SampleCount: n,
	}
}

// FitDomains fits every cognitive domain. Domains without samples get Neutral.
func FitDomains(samples map[domain.CognitiveDomain][]Sample) map[domain.CognitiveDomain]domain.CosinorResult {
	out := make(map[domain.CognitiveDomain]domain.CosinorResult, len(domain.CognitiveDomains))
	for _, d := range domain.CognitiveDomains {
		out[d] = Fit(samples[d])
	}
	return out
}

// Predict evaluates a fit at hour t.
func Predict(r domain.CosinorResult, t float64) float64 {
	return r.Mesor + r.Amplitude*math.Cos(omega*(t-r.Acrophase))
}

// Shape is the fit's rhythm scaled to [0,1], peaking at the acrophase.
func Shape(r domain.CosinorResult, t float64) float64 {
	return 0.5 * (1 + math.Cos(omega*(t-r.Acrophase)))
}

// MeanReliability averages reliability over the five cognitive domains; a
// missing domain counts as 0.
func MeanReliability(fits map[domain.CognitiveDomain]domain.CosinorResult) float64 {
	values := make([]float64, 0, len(domain.CognitiveDomains))
	for _, d := range domain.CognitiveDomains {
		values = append(values, fits[d].Reliability)
	}
	return stats.Mean(values)
}

func wrapHour(h float64) float64 {
	h = math.Mod(h, Period)
	if h < 0 {
		h += Period
	}
	if h >= Period {
		h = 0
	}
	return h
}

// circularDistance is the shortest distance between two hours on the clock.
func circularDistance(a, b float64) float64 {
	d := math.Abs(wrapHour(a) - wrapHour(b))
	if d > Period/2 {
		d = Period - d
	}
	return d
}
