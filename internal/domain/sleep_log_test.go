package domain

import (
	"testing"
	"time"
	_ "time/tzdata" // Embed timezone database for CI/minimal containers

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepLog_ToResponse_TimezoneConversion(t *testing.T) {
	tests := []struct {
		name          string
		log           SleepLog
		wantStartHour int
		wantEndHour   int
		wantStartDay  int
		wantZone      string
	}{
		{
			name: "Los Angeles in winter",
			log: SleepLog{
				StartAt:       time.Date(2024, 1, 16, 6, 0, 0, 0, time.UTC),
				EndAt:         time.Date(2024, 1, 16, 17, 0, 0, 0, time.UTC),
				LocalTimezone: "America/Los_Angeles",
			},
			wantStartHour: 22,
			wantEndHour:   9,
			wantStartDay:  15,
			wantZone:      "PST",
		},
		{
			name: "Warsaw in winter",
			log: SleepLog{
				StartAt:       time.Date(2024, 1, 14, 22, 0, 0, 0, time.UTC),
				EndAt:         time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC),
				LocalTimezone: "Europe/Warsaw",
			},
			wantStartHour: 23,
			wantEndHour:   7,
			wantStartDay:  14,
			wantZone:      "CET",
		},
		{
			name: "unknown zone falls back to UTC",
			log: SleepLog{
				StartAt:       time.Date(2024, 1, 14, 22, 0, 0, 0, time.UTC),
				EndAt:         time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC),
				LocalTimezone: "Mars/Olympus",
			},
			wantStartHour: 22,
			wantEndHour:   6,
			wantStartDay:  14,
			wantZone:      "UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.log.ID = uuid.New()
			tt.log.UserID = uuid.New()
			resp := tt.log.ToResponse()

			assert.Equal(t, tt.wantStartHour, resp.LocalStartAt.Hour())
			assert.Equal(t, tt.wantEndHour, resp.LocalEndAt.Hour())
			assert.Equal(t, tt.wantStartDay, resp.LocalStartAt.Day())
			zone, _ := resp.LocalStartAt.Zone()
			assert.Equal(t, tt.wantZone, zone)

			// The instant is unchanged by localization.
			assert.True(t, resp.StartAt.Equal(resp.LocalStartAt))
			assert.Equal(t, tt.log.EndAt.Sub(tt.log.StartAt), resp.LocalEndAt.Sub(resp.LocalStartAt))
		})
	}
}

func TestSleepLog_ToResponse_DSTSpringForward(t *testing.T) {
	// 2024-03-10 02:00 America/New_York jumps to 03:00.
	log := SleepLog{
		StartAt:       time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC), // 23:00 EST
		EndAt:         time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC), // 07:00 EDT
		LocalTimezone: "America/New_York",
	}
	resp := log.ToResponse()

	assert.Equal(t, 23, resp.LocalStartAt.Hour())
	assert.Equal(t, 7, resp.LocalEndAt.Hour())
	assert.Equal(t, 7*time.Hour, resp.EndAt.Sub(resp.StartAt))
}

func TestSleepLog_ToEntry(t *testing.T) {
	wakings := 2
	log := SleepLog{
		StartAt:       time.Date(2024, 1, 14, 22, 30, 0, 0, time.UTC),
		EndAt:         time.Date(2024, 1, 15, 6, 15, 0, 0, time.UTC),
		Quality:       7,
		Type:          SleepTypeCore,
		LocalTimezone: "Europe/Warsaw",
		WakingEvents:  &wakings,
	}

	entry := log.ToEntry()
	assert.Equal(t, "2024-01-15", entry.Date)
	assert.Equal(t, "23:30", entry.BedTime)
	assert.Equal(t, "07:15", entry.WakeTime)
	require.NotNil(t, entry.SleepQualityScore)
	assert.Equal(t, 70.0, *entry.SleepQualityScore)
	require.NotNil(t, entry.WakingEvents)
	assert.Equal(t, 2, *entry.WakingEvents)
}

func TestSleepLog_ToEntry_NoQuality(t *testing.T) {
	log := SleepLog{
		StartAt: time.Date(2024, 1, 14, 23, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC),
	}

	entry := log.ToEntry()
	assert.Equal(t, "23:00", entry.BedTime)
	assert.Equal(t, "07:00", entry.WakeTime)
	assert.Nil(t, entry.SleepQualityScore)
	assert.Nil(t, entry.WakingEvents)
}

func TestUser_Location(t *testing.T) {
	assert.Equal(t, "Asia/Tokyo", (&User{Timezone: "Asia/Tokyo"}).Location().String())
	assert.Equal(t, time.UTC, (&User{Timezone: "Nowhere/Special"}).Location())
	assert.Equal(t, time.UTC, (&User{}).Location())

	var missing *User
	assert.Equal(t, time.UTC, missing.Location())
}

func TestTimeWindow_Contains(t *testing.T) {
	school := TimeWindow{Start: 8, Duration: 7}
	assert.True(t, school.Contains(8))
	assert.True(t, school.Contains(14.99))
	assert.False(t, school.Contains(15))
	assert.False(t, school.Contains(7.5))

	overnight := TimeWindow{Start: 22, Duration: 4}
	assert.True(t, overnight.Contains(23))
	assert.True(t, overnight.Contains(1.5))
	assert.False(t, overnight.Contains(2))

	assert.False(t, TimeWindow{Start: 8}.Contains(8))
}

func TestIsCognitiveDomain(t *testing.T) {
	for _, d := range CognitiveDomains {
		assert.True(t, IsCognitiveDomain(d))
	}
	assert.False(t, IsCognitiveDomain("creativity"))
}
