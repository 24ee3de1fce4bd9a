package tournament

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStartLaterSameWeek(t *testing.T) {
	cfg := ScheduleConfig{Weekday: time.Friday, Hour: 18, Minute: 0}

	// Wednesday before the configured Friday slot
	now := time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)
	next := nextStart(now, cfg, time.UTC)

	assert.Equal(t, time.Date(2026, 8, 7, 18, 0, 0, 0, time.UTC), next)
}

func TestNextStartSameDayEarlierTimeRollsAWeek(t *testing.T) {
	cfg := ScheduleConfig{Weekday: time.Friday, Hour: 18, Minute: 0}

	// Friday evening, past the slot
	now := time.Date(2026, 8, 7, 19, 30, 0, 0, time.UTC)
	next := nextStart(now, cfg, time.UTC)

	assert.Equal(t, time.Date(2026, 8, 14, 18, 0, 0, 0, time.UTC), next)
}

func TestNextStartIsStrictlyAfterNow(t *testing.T) {
	cfg := ScheduleConfig{Weekday: time.Friday, Hour: 18, Minute: 0}

	// Exactly on the slot
	now := time.Date(2026, 8, 7, 18, 0, 0, 0, time.UTC)
	next := nextStart(now, cfg, time.UTC)

	assert.True(t, next.After(now))
	assert.Equal(t, time.Date(2026, 8, 14, 18, 0, 0, 0, time.UTC), next)
}

func TestNextStartHonorsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cfg := ScheduleConfig{Weekday: time.Friday, Hour: 20, Minute: 0, Timezone: "Europe/Berlin"}

	// Thursday in UTC
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	next := nextStart(now, cfg, loc)

	assert.Equal(t, time.Date(2026, 8, 7, 20, 0, 0, 0, loc), next)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := ScheduleConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.location())

	empty := ScheduleConfig{}
	assert.Equal(t, time.UTC, empty.location())
}
