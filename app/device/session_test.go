package device_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/device/devicetest"
)

var testAddr = device.Address{Host: "192.168.1.201", Port: 4370, Timeout: 5 * time.Second}

func TestWithSessionBracketOrder(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	err := m.WithSession(context.Background(), testAddr, func(conn device.Conn) error {
		_, err := conn.Users()
		return err
	})
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}

	want := []string{"connect", "disable", "users", "enable", "disconnect"}
	if got := term.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("call order: got %v, want %v", got, want)
	}
	if term.Disabled() {
		t.Error("terminal left disabled after session")
	}
}

func TestWithSessionEnableRunsAfterOperationFailure(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	opErr := errors.New("operation exploded")
	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("got %v, want operation error", err)
	}

	want := []string{"connect", "disable", "enable", "disconnect"}
	if got := term.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("call order: got %v, want %v", got, want)
	}
	if term.Disabled() {
		t.Error("terminal left disabled after failed operation")
	}
}

func TestWithSessionEnableFailureDoesNotMaskOperationError(t *testing.T) {
	term := devicetest.New()
	term.EnableErr = errors.New("enable refused")
	m := device.NewManager(term)

	opErr := errors.New("operation exploded")
	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("got %v, want the operation error, not the enable error", err)
	}
}

func TestWithSessionEnableFailureSurfacedOnSuccess(t *testing.T) {
	term := devicetest.New()
	term.EnableErr = errors.New("enable refused")
	m := device.NewManager(term)

	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error {
		return nil
	})
	if !errors.Is(err, device.ErrTransport) {
		t.Fatalf("got %v, want transport error", err)
	}
}

func TestWithSessionClassifiesMidSessionFailure(t *testing.T) {
	term := devicetest.New()
	term.ListErr = errors.New("socket reset by terminal")
	m := device.NewManager(term)

	err := m.WithSession(context.Background(), testAddr, func(conn device.Conn) error {
		_, err := conn.Users()
		return err
	})
	if !errors.Is(err, device.ErrTransport) {
		t.Fatalf("got %v, want transport error", err)
	}
	if !errors.Is(err, term.ListErr) {
		t.Errorf("driver error not preserved in chain: %v", err)
	}
	if term.Disabled() {
		t.Error("terminal left disabled after mid-session failure")
	}
}

func TestWithSessionKeepsCallbackErrorsUnclassified(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	domainErr := errors.New("id already taken")
	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error {
		return domainErr
	})
	if !errors.Is(err, domainErr) {
		t.Fatalf("got %v, want the callback's own error", err)
	}
	if errors.Is(err, device.ErrTransport) {
		t.Error("callback error must not be reclassified as transport")
	}
}

func TestWithSessionConnectRetries(t *testing.T) {
	term := devicetest.New()
	term.FailConnects = 2
	m := device.NewManager(term)

	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error { return nil })
	if err != nil {
		t.Fatalf("session failed despite retry budget: %v", err)
	}

	connects := 0
	for _, call := range term.Calls() {
		if call == "connect" {
			connects++
		}
	}
	if connects != 3 {
		t.Errorf("connect attempts: got %d, want 3", connects)
	}
}

func TestWithSessionUnreachable(t *testing.T) {
	term := devicetest.New()
	term.FailConnects = 3
	m := device.NewManager(term)

	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error { return nil })
	if !errors.Is(err, device.ErrUnreachable) {
		t.Fatalf("got %v, want unreachable", err)
	}
}

func TestWithSessionDisableBusy(t *testing.T) {
	term := devicetest.New()
	term.DisableBusy = true
	m := device.NewManager(term)

	err := m.WithSession(context.Background(), testAddr, func(device.Conn) error { return nil })
	if !errors.Is(err, device.ErrBusy) {
		t.Fatalf("got %v, want busy", err)
	}

	calls := term.Calls()
	if calls[len(calls)-1] != "disconnect" {
		t.Errorf("disconnect must still run after busy, calls: %v", calls)
	}
}

func TestWithSessionQueuedCallerTimesOut(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		m.WithSession(context.Background(), testAddr, func(device.Conn) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.WithSession(ctx, testAddr, func(device.Conn) error { return nil })
	close(release)

	if !errors.Is(err, device.ErrTimeout) {
		t.Fatalf("got %v, want timeout", err)
	}
	// The queued caller never reached the device: a single connect only.
	connects := 0
	for _, call := range term.Calls() {
		if call == "connect" {
			connects++
		}
	}
	if connects != 1 {
		t.Errorf("timed-out caller touched the terminal, %d connects", connects)
	}
}

func TestWithSessionSerializesCallers(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.WithSession(context.Background(), testAddr, func(device.Conn) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					cur := atomic.LoadInt32(&maxInFlight)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("sessions overlapped: max in flight %d", got)
	}
}

func TestIndependentTerminalsDoNotSerialize(t *testing.T) {
	term := devicetest.New()
	m := device.NewManager(term)

	other := device.Address{Host: "192.168.1.202", Port: 4370, Timeout: time.Second}

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		m.WithSession(context.Background(), testAddr, func(device.Conn) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	// A second physical terminal has its own gate; this must not queue.
	// The shared simulator rejects the overlapping connection, which is
	// fine: the point is that the gate did not block.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := m.WithSession(ctx, other, func(device.Conn) error { return nil })
	if errors.Is(err, device.ErrTimeout) {
		t.Fatal("session against a different address queued behind the first")
	}
}

func ExampleManager_WithSession() {
	term := devicetest.New()
	term.Seed([]device.RawUser{{UID: 1, ExternalID: "1", Name: "Alice"}}, nil)

	m := device.NewManager(term)
	_ = m.WithSession(context.Background(), device.Address{Host: "10.0.0.9", Port: 4370}, func(conn device.Conn) error {
		users, err := conn.Users()
		if err != nil {
			return err
		}
		fmt.Println(len(users), "user(s)")
		return nil
	})
	// Output: 1 user(s)
}
