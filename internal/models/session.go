package models

import "time"

// Session represents a candidate study session: a time interval with a benefit
// weight. Start/End are minutes since midnight, Start < End.
type Session struct {
	ID        string
	Label     string
	Start     int
	End       int
	Weight    float64
	CreatedAt time.Time
}

// ScheduleEntry is an output copy of a chosen session with clock text rendered
// for display. Mutating it never affects the stored session.
type ScheduleEntry struct {
	Label     string
	Start     int
	End       int
	StartText string
	EndText   string
	Weight    float64
}

// Schedule is the optimizer result: chosen sessions sorted by start time and
// their combined weight.
type Schedule struct {
	Total   float64
	Entries []ScheduleEntry
}
