package models

import "time"

// PunchEvent is a single clock event retrieved from the terminal.
// Timestamps are in the terminal's local clock. Records are immutable
// once retrieved; the same user punching twice on one day produces two
// events.
type PunchEvent struct {
	ExternalID string    `json:"user_id"`
	Timestamp  time.Time `json:"timestamp"`
	PunchType  PunchType `json:"punch_type"`
	Status     int       `json:"status"`
}

// AttendanceGrid is the per-user presence calendar for one month.
// Days is indexed 0..daysInMonth-1 (day 1 of the month at index 0).
type AttendanceGrid struct {
	ExternalID  string      `json:"user_id"`
	DisplayName string      `json:"username"`
	Days        []DayStatus `json:"days"`
}
