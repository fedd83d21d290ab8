// Package seed fills a database with sample people, survey answers, sleep logs
// and activity telemetry so profiles and sync scores have something to chew on.
package seed

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/config"
	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	seededDays      = 40
	sessionsPerDay  = 2
	defaultRandSeed = 42
)

// seedNamespace derives stable record IDs so reseeding is idempotent.
var seedNamespace = uuid.MustParse("6f1c0e52-3b8e-4b1a-9c55-2f0d4f7a9e10")

// persona shapes the generated data around a wake time and peak hour.
type persona struct {
	user     domain.User
	quiz     domain.QuizResponses
	bedHour  int     // local
	peakHour float64 // local
	skill    float64 // 0..1
}

// Dataset is everything Run writes.
type Dataset struct {
	Users     []domain.User
	Quizzes   []domain.QuizResponses
	SleepLogs []domain.SleepLog
	Records   []domain.ActivityRecord
}

func personas() []persona {
	mk := func(id, tz string) domain.User {
		return domain.User{ID: uuid.MustParse(id), Timezone: tz}
	}
	return []persona{
		{
			user: mk("11111111-1111-1111-1111-111111111111", "Europe/Amsterdam"),
			quiz: domain.QuizResponses{
				NaturalWake: "Before 8 AM", FocusTime: "Morning", TestTime: "Morning",
				SchoolStart: "8:00-8:30 AM", HomeworkTime: "Right after school",
				MorningGrogginess: "Alert", WeekendBedtime: "Same time", SchoolWake: "6-7 AM",
			},
			bedHour: 22, peakHour: 9.5, skill: 0.75,
		},
		{
			user: mk("22222222-2222-2222-2222-222222222222", "America/New_York"),
			quiz: domain.QuizResponses{
				NaturalWake: "8-10 AM", FocusTime: "Afternoon", TestTime: "Midday",
				SchoolStart: "8:30-9:00 AM", HomeworkTime: "Evening",
				MorningGrogginess: "Somewhat groggy", WeekendBedtime: "1-2 hours later", SchoolWake: "7-8 AM",
			},
			bedHour: 23, peakHour: 14, skill: 0.6,
		},
		{
			user: mk("33333333-3333-3333-3333-333333333333", "Asia/Tokyo"),
			quiz: domain.QuizResponses{
				NaturalWake: "10 AM-12 PM", FocusTime: "Night", TestTime: "Evening",
				SchoolStart: "Before 8 AM", HomeworkTime: "Late night",
				MorningGrogginess: "Very groggy", WeekendBedtime: "More than 2 hours later", SchoolWake: "Before 6 AM",
			},
			bedHour: 1, peakHour: 20, skill: 0.5,
		},
		{
			user: mk("44444444-4444-4444-4444-444444444444", "Australia/Sydney"),
			quiz: domain.QuizResponses{
				NaturalWake: "8-10 AM", FocusTime: "Midday", TestTime: "Afternoon",
				SchoolStart: "After 9 AM", HomeworkTime: "Late afternoon",
			},
			bedHour: 23, peakHour: 12, skill: 0.85,
		},
	}
}

// Build generates the sample data ending at now. The same seed yields the
// same dataset.
func Build(now time.Time, randSeed int64) Dataset {
	rng := rand.New(rand.NewSource(randSeed))
	var ds Dataset

	for _, p := range personas() {
		loc := p.user.Location()
		p.quiz.UserID = p.user.ID

		ds.Users = append(ds.Users, p.user)
		ds.Quizzes = append(ds.Quizzes, p.quiz)

		for i := 0; i < seededDays; i++ {
			day := now.In(loc).AddDate(0, 0, -i)
			ds.SleepLogs = append(ds.SleepLogs, sleepLogs(p, day, i, rng)...)
			for s := 0; s < sessionsPerDay; s++ {
				ds.Records = append(ds.Records, activityRecord(p, day, i, s, rng))
			}
		}
	}
	return ds
}

func sleepLogs(p persona, day time.Time, i int, rng *rand.Rand) []domain.SleepLog {
	loc := day.Location()
	// Bedtime the previous evening, or after midnight for late sleepers.
	bed := time.Date(day.Year(), day.Month(), day.Day(), p.bedHour, rng.Intn(60), 0, 0, loc)
	if p.bedHour >= 12 {
		bed = bed.AddDate(0, 0, -1)
	}
	wake := bed.Add(time.Duration(6*60+rng.Intn(180)) * time.Minute)

	wakings := rng.Intn(4)
	coreID := fmt.Sprintf("seed-core-%s-%d", p.user.ID, i)
	logs := []domain.SleepLog{{
		UserID:          p.user.ID,
		StartAt:         bed.UTC(),
		EndAt:           wake.UTC(),
		Quality:         5 + rng.Intn(6),
		Type:            domain.SleepTypeCore,
		LocalTimezone:   p.user.Timezone,
		WakingEvents:    &wakings,
		ClientRequestID: &coreID,
	}}

	if rng.Float32() < 0.3 {
		napStart := time.Date(day.Year(), day.Month(), day.Day(), 13+rng.Intn(3), rng.Intn(60), 0, 0, loc)
		napID := fmt.Sprintf("seed-nap-%s-%d", p.user.ID, i)
		logs = append(logs, domain.SleepLog{
			UserID:          p.user.ID,
			StartAt:         napStart.UTC(),
			EndAt:           napStart.Add(time.Duration(20+rng.Intn(40)) * time.Minute).UTC(),
			Quality:         4 + rng.Intn(7),
			Type:            domain.SleepTypeNap,
			LocalTimezone:   p.user.Timezone,
			ClientRequestID: &napID,
		})
	}
	return logs
}

var seededActivities = []string{
	"memory_match", "sequence_recall", "word_recall", "focus_flow",
	"speed_sort", "task_switch", "pattern_logic",
}

func activityRecord(p persona, day time.Time, i, s int, rng *rand.Rand) domain.ActivityRecord {
	activity := seededActivities[(i*sessionsPerDay+s)%len(seededActivities)]

	hour := 7 + rng.Float64()*15
	at := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).
		Add(time.Duration(hour * float64(time.Hour))).UTC()

	// Performance peaks near the persona's peak hour.
	dist := hour - p.peakHour
	boost := 0.2 * (1 - dist*dist/64)
	perf := clamp01(p.skill + boost + rng.NormFloat64()*0.05)

	payload := activityPayload(activity, perf, at)
	raw, _ := json.Marshal(payload)

	return domain.ActivityRecord{
		ID:        uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%s/%d/%d", p.user.ID, i, s))),
		UserID:    p.user.ID,
		Activity:  activity,
		Payload:   datatypes.JSON(raw),
		CreatedAt: &at,
	}
}

// activityPayload mirrors the shapes the default domain mapping reads.
func activityPayload(activity string, perf float64, at time.Time) map[string]any {
	overview := map[string]any{"timestamp": at.Format(time.RFC3339)}
	payload := map[string]any{"sessionOverview": overview}

	switch activity {
	case "memory_match":
		payload["accuracy"] = round1(perf * 100)
		overview["focusScore"] = round1(perf * 95)
	case "sequence_recall":
		overview["longestSequence"] = 2 + int(perf*10)
		payload["cognitiveScore"] = round1(perf * 100)
	case "word_recall":
		payload["recallRate"] = fmt.Sprintf("%.0f%%", perf*100)
	case "focus_flow":
		payload["accuracy"] = round1(perf * 100)
		overview["lapses"] = int((1 - perf) * 20)
		overview["averageReactionTime"] = round1(1500 - perf*1200)
	case "speed_sort":
		overview["averageReactionTime"] = round1(1400 - perf*1100)
	case "task_switch":
		payload["accuracy"] = round1(perf * 100)
		overview["switchCost"] = round1((1 - perf) * 700)
	case "pattern_logic":
		payload["accuracy"] = round1(perf * 100)
		payload["winRate"] = round1(perf * 90)
	}
	return payload
}

// Run writes the sample dataset. Safe to call multiple times.
func Run(db *gorm.DB, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	ds := Build(time.Now().UTC(), defaultRandSeed)

	for _, user := range ds.Users {
		if err := db.Where("id = ?", user.ID).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.ID, err)
		}
	}
	for _, quiz := range ds.Quizzes {
		if err := db.Save(&quiz).Error; err != nil {
			return fmt.Errorf("failed to save quiz for %s: %w", quiz.UserID, err)
		}
	}
	for _, sl := range ds.SleepLogs {
		if err := db.Where("client_request_id = ?", *sl.ClientRequestID).FirstOrCreate(&sl).Error; err != nil {
			return fmt.Errorf("failed to create sleep log: %w", err)
		}
	}
	for _, rec := range ds.Records {
		if err := db.Where("id = ?", rec.ID).FirstOrCreate(&rec).Error; err != nil {
			return fmt.Errorf("failed to create activity record: %w", err)
		}
	}

	log.Info("seed completed",
		"users", len(ds.Users),
		"sleep_logs", len(ds.SleepLogs),
		"activity_records", len(ds.Records),
	)
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
