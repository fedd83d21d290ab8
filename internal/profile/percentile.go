package profile

import (
	"math"

	"github.com/blaisecz/cognitive-sync/internal/domain"
)

// NeutralPercentile is reported when there is nothing to compare against.
const NeutralPercentile = 50

// Population holds other people's current scores per domain.
type Population map[domain.CognitiveDomain][]float64

// Percentile is the share of the population scoring strictly below score,
// rounded to a whole percent. The person is expected to be left out of their
// own population. Zeros in the population are ignored. An empty population,
// or a person without a score, yields NeutralPercentile.
func Percentile(score float64, population []float64) int {
	if score <= 0 {
		return NeutralPercentile
	}

	var below, n int
	for _, v := range population {
		if v <= 0 {
			continue
		}
		n++
		if v < score {
			below++
		}
	}
	if n == 0 {
		return NeutralPercentile
	}
	return int(math.Round(100 * float64(below) / float64(n)))
}

// Percentiles ranks every domain of scores. A nil population means the
// snapshot was unavailable and every domain is neutral.
func Percentiles(scores map[domain.CognitiveDomain]domain.DomainScore, population Population) map[domain.CognitiveDomain]int {
	out := make(map[domain.CognitiveDomain]int, len(scores))
	for d, s := range scores {
		if population == nil {
			out[d] = NeutralPercentile
			continue
		}
		out[d] = Percentile(float64(s.Current), population[d])
	}
	return out
}
