package tournament

import (
	"log"
	"time"
)

// ScheduleConfig describes the weekly recurring start
type ScheduleConfig struct {
	// Weekday, Hour and Minute locate the start within a week
	Weekday time.Weekday
	Hour    int
	Minute  int

	// Timezone is an IANA zone name, e.g. "Europe/Berlin". An empty or
	// unloadable zone falls back to UTC with a logged warning.
	Timezone string
}

// location resolves the configured zone, falling back to UTC
func (c ScheduleConfig) location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("WARN: unknown timezone %q, falling back to UTC: %v", c.Timezone, err)
		return time.UTC
	}

	return loc
}

// nextStart returns the next occurrence of the configured weekday and
// time strictly after now
func nextStart(now time.Time, cfg ScheduleConfig, loc *time.Location) time.Time {
	local := now.In(loc)

	days := (int(cfg.Weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+days, cfg.Hour, cfg.Minute, 0, 0, loc)

	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate
}
