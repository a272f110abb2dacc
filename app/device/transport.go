package device

import (
	"strconv"
	"time"
)

// Address identifies one physical terminal.
type Address struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func (a Address) String() string {
	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Vendor privilege codes as stored on the device.
const (
	PrivilegeCodeDefault = 0
	PrivilegeCodeAdmin   = 14
)

// RawUser is a user table entry exactly as the device reports it:
// numeric privilege code, name possibly blank or padded with spaces.
type RawUser struct {
	UID        int
	ExternalID string
	Name       string
	Privilege  int
	Password   string
	GroupID    string
}

// RawPunch is one attendance log entry as the device reports it.
type RawPunch struct {
	ExternalID string
	Timestamp  time.Time
	Punch      int
	Status     int
}

// Conn is a live connection to a terminal. All methods may fail with a
// transport-level error at any time; callers never use a Conn outside
// Manager.WithSession, which owns the disable/enable bracket and the
// final Disconnect.
type Conn interface {
	Disable() error
	Enable() error
	Disconnect() error

	Users() ([]RawUser, error)
	SetUser(u RawUser) error
	DeleteUser(externalID string) error
	Attendance() ([]RawPunch, error)
	Enroll(uid, slot int) error
	PlayPrompt(index int) error
}

// Transport opens connections to terminals. The wire protocol's framing
// and checksum layer lives behind this interface; the repository ships
// an in-memory implementation for tests and development (devicetest),
// real vendor drivers plug in here.
type Transport interface {
	Connect(addr Address) (Conn, error)
}
