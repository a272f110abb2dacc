package device

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// connectAttempts bounds connection establishment: one try plus two
// retries. There is a single physical device with no redundancy, so
// backoff beyond the transport's own timeout buys nothing.
const connectAttempts = 3

// Manager owns all access to the terminals. Exactly one session may be
// live per address at any time; every session runs the full
// disable -> operate -> enable bracket and always disconnects, whatever
// the operation does.
type Manager struct {
	transport Transport

	mu    sync.Mutex
	gates map[string]chan struct{}
}

func NewManager(t Transport) *Manager {
	return &Manager{
		transport: t,
		gates:     make(map[string]chan struct{}),
	}
}

// gate returns the single-slot semaphore for one physical address.
// Each terminal gets its own gate; sessions against different terminals
// do not serialize against each other.
func (m *Manager) gate(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gates[key]
	if !ok {
		g = make(chan struct{}, 1)
		m.gates[key] = g
	}
	return g
}

// WithSession acquires exclusive access to the terminal at addr, brackets
// fn with disable/enable and returns fn's error. Callers queue for the
// gate until ctx expires, in which case they get ErrTimeout without ever
// touching the device.
//
// The enable step runs even when fn fails; its own failure is logged and
// only surfaced when fn succeeded, so it never masks the primary error.
// Disconnect always runs. Mutating operations are never retried here --
// a failed mutation is surfaced, not repeated.
func (m *Manager) WithSession(ctx context.Context, addr Address, fn func(Conn) error) (err error) {
	gate := m.gate(addr.String())
	select {
	case gate <- struct{}{}:
	case <-ctx.Done():
		return &Error{Kind: KindTimeout, Detail: "waiting for terminal " + addr.String(), Err: ctx.Err()}
	}
	defer func() { <-gate }()

	sid := uuid.NewString()[:8]

	conn, err := m.connect(ctx, addr, sid)
	if err != nil {
		return err
	}
	defer func() {
		if derr := conn.Disconnect(); derr != nil {
			log.Printf("session %s: disconnect %s: %v", sid, addr, derr)
		}
	}()

	if derr := conn.Disable(); derr != nil {
		return transport("disable", derr)
	}
	defer func() {
		eerr := conn.Enable()
		if eerr == nil {
			return
		}
		log.Printf("session %s: re-enable %s failed: %v", sid, addr, eerr)
		if err == nil {
			err = transport("enable", eerr)
		}
	}()

	// fn sees a classified view of the connection so that any device
	// failure it propagates already carries an error kind. Errors fn
	// produces itself pass through untouched.
	return fn(classified{conn})
}

// classified wraps a Conn so every failing operation crosses the
// session boundary as a *Error. Drivers that already classify their
// failures keep their own kinds.
type classified struct{ conn Conn }

func (c classified) Disable() error    { return classify("disable", c.conn.Disable()) }
func (c classified) Enable() error     { return classify("enable", c.conn.Enable()) }
func (c classified) Disconnect() error { return classify("disconnect", c.conn.Disconnect()) }

func (c classified) Users() ([]RawUser, error) {
	users, err := c.conn.Users()
	return users, classify("list users", err)
}

func (c classified) SetUser(u RawUser) error {
	return classify("set user", c.conn.SetUser(u))
}

func (c classified) DeleteUser(externalID string) error {
	return classify("delete user", c.conn.DeleteUser(externalID))
}

func (c classified) Attendance() ([]RawPunch, error) {
	punches, err := c.conn.Attendance()
	return punches, classify("list attendance", err)
}

func (c classified) Enroll(uid, slot int) error {
	return classify("enroll", c.conn.Enroll(uid, slot))
}

func (c classified) PlayPrompt(index int) error {
	return classify("play prompt", c.conn.PlayPrompt(index))
}

func classify(detail string, err error) error {
	if err == nil {
		return nil
	}
	return transport(detail, err)
}

func (m *Manager) connect(ctx context.Context, addr Address, sid string) (Conn, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, &Error{Kind: KindTimeout, Detail: "connecting to " + addr.String(), Err: cerr}
		}
		conn, cerr := m.transport.Connect(addr)
		if cerr == nil {
			return conn, nil
		}
		lastErr = cerr
		log.Printf("session %s: connect %s attempt %d/%d: %v", sid, addr, attempt, connectAttempts, cerr)
	}
	return nil, unreachable(addr, lastErr)
}
