package circadian

import (
	"math"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/stats"
)

const (
	// TimelineBins is the number of 15-minute bins in a day.
	TimelineBins = 96

	schoolWeight = 0.7
	studyWeight  = 0.3

	// Below this mean reliability the timeline is the theoretical curve.
	timelineMinReliability = 0.1

	qualityPivot  = 70.0
	qualitySlope  = 0.1
	sleepBaseline = 0.8
)

// Input is everything a sync score is computed from. Observations are
// per-record performance scores (0-100) at their local hour.
type Input struct {
	Quiz         *domain.QuizResponses
	Sleep        []domain.SleepEntry
	Cosinor      map[domain.CognitiveDomain]domain.CosinorResult
	Observations []Sample
	Now          time.Time
}

// Calculator computes SyncResults from survey tables.
type Calculator struct {
	tables SurveyTables
}

// NewCalculator creates a Calculator.
func NewCalculator(tables SurveyTables) *Calculator {
	return &Calculator{tables: tables}
}

// Compute blends the survey's theoretical alignment with what the records
// show, weighted by how reliable the cosinor fits are, and penalizes social
// jetlag. A nil quiz uses the table defaults for every answer.
func (c *Calculator) Compute(in Input) domain.SyncResult {
	var quiz domain.QuizResponses
	if in.Quiz != nil {
		quiz = *in.Quiz
	}
	t := c.tables

	phase := t.TheoreticalPhase(quiz)
	readiness := Readiness{
		Phase:       phase,
		WakeHour:    t.WakeHour(quiz),
		WakeInertia: t.WakeInertia,
	}

	schoolWindow := t.SchoolWindow(quiz)
	studyWindow := t.StudyWindow(quiz)
	theoSchool := WindowMean(readiness.At, schoolWindow)
	theoStudy := WindowMean(readiness.At, studyWindow)

	obsSchool, schoolN, ok := ObservedAlignment(in.Observations, schoolWindow)
	if !ok {
		obsSchool = theoSchool
	}
	obsStudy, studyN, ok := ObservedAlignment(in.Observations, studyWindow)
	if !ok {
		obsStudy = theoStudy
	}

	reliability := MeanReliability(in.Cosinor)
	blendSchool := (1-reliability)*theoSchool + reliability*obsSchool
	blendStudy := (1-reliability)*theoStudy + reliability*obsStudy

	sleep := c.sleepMetrics(quiz, in.Sleep)
	penalty := JetlagPenalty(sleep.SocialJetlagHours)
	if sleep.Entries > 0 {
		penalty *= sleepBaseline + (1-sleepBaseline)*sleep.Consistency
	}

	score := 100 * penalty * (schoolWeight*blendSchool + studyWeight*blendStudy)
	if sleep.AverageQuality != nil {
		score += qualitySlope * (*sleep.AverageQuality - qualityPivot)
	}

	domainRel := make(map[domain.CognitiveDomain]float64, len(domain.CognitiveDomains))
	for _, d := range domain.CognitiveDomains {
		domainRel[d] = stats.Round2(in.Cosinor[d].Reliability)
	}

	return domain.SyncResult{
		SyncScore:           int(math.Round(stats.Clamp(score, 0, 100))),
		SchoolAlignment:     int(math.Round(stats.Clamp(100*blendSchool, 0, 100))),
		StudyAlignment:      int(math.Round(stats.Clamp(100*blendStudy, 0, 100))),
		LearningPhase:       roundHour(phase),
		SocialJetlagPenalty: stats.Round2(penalty),
		AdaptiveComponents: domain.AdaptiveComponents{
			TheoreticalSchool: stats.Round2(theoSchool),
			TheoreticalStudy:  stats.Round2(theoStudy),
			ObservedSchool:    stats.Round2(obsSchool),
			ObservedStudy:     stats.Round2(obsStudy),
			SchoolSamples:     schoolN,
			StudySamples:      studyN,
			Reliability:       stats.Round2(reliability),
			DomainReliability: domainRel,
			BlendedSchool:     stats.Round2(blendSchool),
			BlendedStudy:      stats.Round2(blendStudy),
			TheoreticalPhase:  roundHour(phase),
			SchoolWindow:      schoolWindow,
			StudyWindow:       studyWindow,
		},
		SleepMetrics:     sleep,
		LearningTimeline: Timeline(readiness, in.Cosinor, reliability),
		Chronotype:       ClassifyChronotype(phase),
		ComputedAt:       in.Now,
	}
}

// sleepMetrics summarizes the log and adds the jetlag midsleeps. Without a
// log, the school-day wake stands in for actual sleep; without either there
// is no measurable jetlag.
func (c *Calculator) sleepMetrics(quiz domain.QuizResponses, entries []domain.SleepEntry) domain.SleepMetrics {
	m := SummarizeSleep(entries)
	natural := c.tables.NaturalMidsleep(quiz)

	actual := natural
	if m.Entries > 0 {
		actual = m.AverageMidsleep
	} else if scheduled, ok := c.tables.ScheduledMidsleep(quiz); ok {
		actual = scheduled
	}

	m.NaturalMidsleep = roundHour(natural)
	m.ActualMidsleep = roundHour(actual)
	m.SocialJetlagHours = roundHour(circularDistance(actual, natural))
	return m
}

// Timeline samples readiness every 15 minutes from midnight. With reliable
// fits, it leans toward the reliability-weighted cosinor rhythm.
func Timeline(r Readiness, fits map[domain.CognitiveDomain]domain.CosinorResult, reliability float64) []float64 {
	var weightSum float64
	for _, d := range domain.CognitiveDomains {
		weightSum += fits[d].Reliability
	}
	blend := reliability >= timelineMinReliability && weightSum > 0

	out := make([]float64, TimelineBins)
	for i := range out {
		t := float64(i) * Period / TimelineBins
		v := r.At(t)
		if blend {
			var empirical float64
			for _, d := range domain.CognitiveDomains {
				if fit := fits[d]; fit.Reliability > 0 {
					empirical += fit.Reliability * Shape(fit, t)
				}
			}
			empirical /= weightSum
			v = (1-reliability)*v + reliability*r.Inertia(t)*empirical
		}
		out[i] = stats.Round2(stats.Clamp01(v))
	}
	return out
}
