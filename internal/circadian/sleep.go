package circadian

import (
	"fmt"
	"math"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

const (
	// MinSleepHours drops entries too short to be a night's sleep.
	MinSleepHours = 1.5

	jetlagDecay = 0.03
)

// JetlagPenalty is exp(-0.03·Δ²) for Δ hours between actual and natural
// midsleep, wrapped to at most 12.
func JetlagPenalty(delta float64) float64 {
	d := circularDistance(0, delta)
	return math.Exp(-jetlagDecay * d * d)
}

// parseClock reads "HH:MM" into a fractional hour.
func parseClock(s string) (float64, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return float64(t.Hour()) + float64(t.Minute())/60, nil
}

type night struct {
	duration float64
	midsleep float64 // [0, 24)
}

func parseNight(e domain.SleepEntry) (night, bool) {
	bed, err := parseClock(e.BedTime)
	if err != nil {
		return night{}, false
	}
	wake, err := parseClock(e.WakeTime)
	if err != nil {
		return night{}, false
	}

	duration := wake - bed
	if duration <= 0 {
		duration += 24
	}
	if duration < MinSleepHours {
		return night{}, false
	}

	return night{duration: duration, midsleep: wrapHour(bed + duration/2)}, true
}

// circularSpread returns the circular mean of clock hours and the root mean
// square of each hour's wrapped distance to it.
func circularSpread(hours []float64) (mean, std float64) {
	var sinSum, cosSum float64
	for _, h := range hours {
		sinSum += math.Sin(omega * h)
		cosSum += math.Cos(omega * h)
	}
	mean = wrapHour(math.Atan2(sinSum, cosSum) / omega)

	var sq float64
	for _, h := range hours {
		d := circularDistance(h, mean)
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(hours)))
}

// SummarizeSleep reduces sleep entries to the figures the sync score uses.
// Midsleep is averaged on the 24h clock so nights on either side of midnight
// or noon stay together; consistency falls from 1 to 0 as the spread around
// that mean grows to two hours. Entries that do not parse
// or are shorter than MinSleepHours are skipped.
func SummarizeSleep(entries []domain.SleepEntry) domain.SleepMetrics {
	var durations, mids, qualities, wakings []float64
	for _, e := range entries {
		n, ok := parseNight(e)
		if !ok {
			continue
		}
		durations = append(durations, n.duration)
		mids = append(mids, n.midsleep)
		if e.SleepQualityScore != nil {
			qualities = append(qualities, stats.Clamp(*e.SleepQualityScore, 0, 100))
		}
		if e.WakingEvents != nil {
			wakings = append(wakings, float64(*e.WakingEvents))
		}
	}

	m := domain.SleepMetrics{Entries: len(durations)}
	if m.Entries == 0 {
		return m
	}

	mid, std := circularSpread(mids)
	m.AverageDuration = stats.Round2(stats.Mean(durations))
	m.AverageMidsleep = wrapHour(roundHour(mid))
	m.MidsleepStdDev = stats.Round2(std)
	m.Consistency = stats.Round2(math.Max(0, 1-std/2))
	if len(qualities) > 0 {
		q := stats.Round1(stats.Mean(qualities))
		m.AverageQuality = &q
	}
	if len(wakings) > 0 {
		w := stats.Round1(stats.Mean(wakings))
		m.AverageWakingEvents = &w
	}
	return m
}
