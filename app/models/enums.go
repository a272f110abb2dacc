package models

// Privilege defines the access level of a user on the terminal.
type Privilege string

const (
	PrivilegeStandard Privilege = "standard"
	PrivilegeAdmin    Privilege = "admin"
)

// DayStatus defines presence for a single calendar day.
type DayStatus string

const (
	Present DayStatus = "present"
	Absent  DayStatus = "absent"
)

// Cell returns the single-letter export form of a day status.
func (s DayStatus) Cell() string {
	if s == Present {
		return "P"
	}
	return "A"
}

// PunchType defines how a punch was registered on the terminal.
type PunchType int

const (
	PunchCheckIn     PunchType = 0
	PunchCheckOut    PunchType = 1
	PunchBreakOut    PunchType = 2
	PunchBreakIn     PunchType = 3
	PunchOvertimeIn  PunchType = 4
	PunchOvertimeOut PunchType = 5
)
