package device

import "fmt"

// Kind classifies every failure the session layer can surface.
type Kind string

const (
	// KindUnreachable: the transport could not connect within the
	// configured timeout, including after retries.
	KindUnreachable Kind = "unreachable"
	// KindBusy: the device refused to enter the disabled state because
	// another operation is mid-flight on it.
	KindBusy Kind = "busy"
	// KindTimeout: the caller's deadline elapsed while queued for the
	// session gate; the terminal was never touched.
	KindTimeout Kind = "timeout"
	// KindTransport: a mid-session failure; the session is torn down.
	KindTransport Kind = "transport"
)

// Error is a classified session failure. Errors of the same Kind match
// under errors.Is regardless of detail, so callers compare against the
// exported sentinels below.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" && e.Err != nil {
		return fmt.Sprintf("device %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("device %s: %s", e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("device %s: %v", e.Kind, e.Err)
	}
	return "device " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnreachable = &Error{Kind: KindUnreachable}
	ErrBusy        = &Error{Kind: KindBusy}
	ErrTimeout     = &Error{Kind: KindTimeout}
	ErrTransport   = &Error{Kind: KindTransport}
)

func unreachable(addr Address, err error) *Error {
	return &Error{Kind: KindUnreachable, Detail: "connect " + addr.String(), Err: err}
}

func transport(detail string, err error) *Error {
	// A transport implementation may already classify its own failures
	// (e.g. the device reporting busy); keep that classification.
	if de, ok := err.(*Error); ok {
		return de
	}
	return &Error{Kind: KindTransport, Detail: detail, Err: err}
}
