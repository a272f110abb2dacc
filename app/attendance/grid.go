// Package attendance folds raw punch events into per-user monthly
// presence grids. Everything here is pure computation: no device access,
// no clock, no hidden state. Identical inputs always produce identical
// grids.
package attendance

import (
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/models"
)

// DaysInMonth returns the calendar-correct day count for a month,
// leap-year aware. Day 0 of the following month is the last day of the
// requested one.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildMonthlyGrid converts punches into one presence grid per user for
// the requested month.
//
// Every user in users gets a grid, even with zero punches: absence is
// the default, not an omission. A punch inside the month flips that
// day to present; repeated punches on the same day are an idempotent
// OR, not a count. Punches outside the month never mark anything.
// A punch whose user id has no directory record still gets a grid,
// displayed as "Unknown", so the attendance record survives an
// unresolvable identity. Output order is the order of users, then
// first appearance for unknown ids.
func BuildMonthlyGrid(punches []models.PunchEvent, users []models.UserRecord, year int, month time.Month) []models.AttendanceGrid {
	days := DaysInMonth(year, month)

	grids := make([]models.AttendanceGrid, 0, len(users))
	index := make(map[string]int, len(users))

	add := func(externalID, displayName string) int {
		daysVec := make([]models.DayStatus, days)
		for i := range daysVec {
			daysVec[i] = models.Absent
		}
		grids = append(grids, models.AttendanceGrid{
			ExternalID:  externalID,
			DisplayName: displayName,
			Days:        daysVec,
		})
		index[externalID] = len(grids) - 1
		return len(grids) - 1
	}

	for _, u := range users {
		if _, ok := index[u.ExternalID]; ok {
			continue
		}
		add(u.ExternalID, u.Name)
	}

	for _, p := range punches {
		if p.Timestamp.Year() != year || p.Timestamp.Month() != month {
			continue
		}
		i, ok := index[p.ExternalID]
		if !ok {
			i = add(p.ExternalID, "Unknown")
		}
		grids[i].Days[p.Timestamp.Day()-1] = models.Present
	}

	return grids
}
