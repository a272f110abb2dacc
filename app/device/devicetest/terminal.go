// Package devicetest provides an in-memory terminal that implements the
// device.Transport boundary. Tests use it to assert session bracketing
// and fault handling; running the server with DEVICE_DRIVER=sim wires it
// in place of a real vendor driver.
package devicetest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/PrimChim/Attendance-zkteco/app/device"
)

// Terminal simulates one physical attendance terminal: an ordered user
// table, an attendance log, and the enabled/disabled operating state.
type Terminal struct {
	mu        sync.Mutex
	users     []device.RawUser
	punches   []device.RawPunch
	connected bool
	disabled  bool
	calls     []string

	// Fault injection, read once where relevant.
	FailConnects    int   // fail this many Connect calls before succeeding
	DisableBusy     bool  // Disable reports the device as busy
	EnableErr       error // Enable fails with this error
	ListErr         error // Users fails with this error
	PromptFailIndex int   // when > 0, PlayPrompt fails for index >= this
}

func New() *Terminal {
	return &Terminal{}
}

// Seed replaces the terminal's user table and attendance log.
func (t *Terminal) Seed(users []device.RawUser, punches []device.RawPunch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users = append([]device.RawUser(nil), users...)
	t.punches = append([]device.RawPunch(nil), punches...)
}

// AddPunch appends one event to the attendance log.
func (t *Terminal) AddPunch(p device.RawPunch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.punches = append(t.punches, p)
}

// Calls returns the verbs invoked on the terminal, in order. Arguments
// are folded into the verb ("enroll 3/2", "prompt 0").
func (t *Terminal) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// UserTable returns a copy of the current user table.
func (t *Terminal) UserTable() []device.RawUser {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]device.RawUser(nil), t.users...)
}

// Disabled reports whether the terminal was left in the disabled state.
// A correctly bracketed session never leaves this true after returning.
func (t *Terminal) Disabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disabled
}

func (t *Terminal) record(call string) {
	t.calls = append(t.calls, call)
}

// Connect implements device.Transport.
func (t *Terminal) Connect(addr device.Address) (device.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("connect")
	if t.FailConnects > 0 {
		t.FailConnects--
		return nil, errors.New("no route to terminal")
	}
	if t.connected {
		return nil, errors.New("terminal already has a live connection")
	}
	t.connected = true
	return &conn{t: t}, nil
}

type conn struct{ t *Terminal }

func (c *conn) Disable() error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("disable")
	if t.DisableBusy {
		return device.ErrBusy
	}
	t.disabled = true
	return nil
}

func (c *conn) Enable() error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("enable")
	if t.EnableErr != nil {
		return t.EnableErr
	}
	t.disabled = false
	return nil
}

func (c *conn) Disconnect() error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("disconnect")
	t.connected = false
	return nil
}

func (c *conn) Users() ([]device.RawUser, error) {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("users")
	if t.ListErr != nil {
		return nil, t.ListErr
	}
	if err := t.requireDisabled(); err != nil {
		return nil, err
	}
	return append([]device.RawUser(nil), t.users...), nil
}

func (c *conn) SetUser(u device.RawUser) error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(fmt.Sprintf("set-user %d", u.UID))
	if err := t.requireDisabled(); err != nil {
		return err
	}
	for i := range t.users {
		if t.users[i].UID == u.UID {
			t.users[i] = u
			return nil
		}
	}
	t.users = append(t.users, u)
	return nil
}

func (c *conn) DeleteUser(externalID string) error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("delete-user " + externalID)
	if err := t.requireDisabled(); err != nil {
		return err
	}
	for i := range t.users {
		if t.users[i].ExternalID == externalID {
			t.users = append(t.users[:i], t.users[i+1:]...)
			return nil
		}
	}
	return errors.New("no user table entry for id " + externalID)
}

func (c *conn) Attendance() ([]device.RawPunch, error) {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("attendance")
	if err := t.requireDisabled(); err != nil {
		return nil, err
	}
	return append([]device.RawPunch(nil), t.punches...), nil
}

func (c *conn) Enroll(uid, slot int) error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(fmt.Sprintf("enroll %d/%d", uid, slot))
	return t.requireDisabled()
}

func (c *conn) PlayPrompt(index int) error {
	t := c.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record(fmt.Sprintf("prompt %d", index))
	if t.PromptFailIndex > 0 && index >= t.PromptFailIndex {
		return fmt.Errorf("voice prompt %d rejected", index)
	}
	return t.requireDisabled()
}

// requireDisabled rejects operations issued outside a disable/enable
// bracket; the real device misbehaves in that state rather than
// erroring, so the simulator is stricter on purpose.
func (t *Terminal) requireDisabled() error {
	if !t.connected {
		return errors.New("not connected")
	}
	if !t.disabled {
		return errors.New("terminal is not disabled for operation")
	}
	return nil
}
