package circadian

import "github.com/blaisecz/cognitive-sync/internal/domain"

type chronotypeBucket struct {
	kind   domain.ChronotypeType
	from   float64
	to     float64
	center float64
}

// Buckets over the learning phase. Dolphin takes whatever the others leave.
var chronotypeBuckets = []chronotypeBucket{
	{kind: domain.ChronotypeLion, from: 4, to: 8.5, center: 7},
	{kind: domain.ChronotypeBear, from: 8.5, to: 11.5, center: 10},
	{kind: domain.ChronotypeWolf, from: 11.5, to: 16, center: 13.5},
}

const dolphinCenter = 18.0

// ClassifyChronotype labels a learning phase and measures how far it sits
// from each label's center.
func ClassifyChronotype(phase float64) domain.Chronotype {
	phase = wrapHour(phase)

	c := domain.Chronotype{
		Type:      domain.ChronotypeDolphin,
		Center:    dolphinCenter,
		Distances: make(map[domain.ChronotypeType]float64, len(chronotypeBuckets)+1),
	}
	for _, b := range chronotypeBuckets {
		c.Distances[b.kind] = roundHour(circularDistance(phase, b.center))
		if phase >= b.from && phase < b.to {
			c.Type = b.kind
			c.Center = b.center
		}
	}
	c.Distances[domain.ChronotypeDolphin] = roundHour(circularDistance(phase, dolphinCenter))
	c.OutOfSyncHours = c.Distances[c.Type]
	return c
}
