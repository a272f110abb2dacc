// Package enroll drives the device side of fingerprint enrollment.
//
// Enrollment is a hardware handshake finished by a person standing at
// the terminal. This system can only initiate it and cannot observe
// completion, so the coordinator returns a ticket whose status is
// always "initiated" -- never "completed".
package enroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PrimChim/Attendance-zkteco/app/device"
)

var ErrUserNotFound = errors.New("user not found on terminal")

const (
	// DefaultSlot is the fingerprint template slot used when the caller
	// does not pick one. Terminals hold slots 0-9 per user, so "unset"
	// needs its own sentinel; slot 0 is a real slot.
	DefaultSlot = 2
	SlotUnset   = -1
	MaxSlot     = 9

	// enrollPromptIndex is the audible prompt played on the terminal
	// once enrollment has started, telling the employee to present a
	// finger.
	enrollPromptIndex = 0
)

// Ticket records an initiated enrollment.
type Ticket struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"user_id"`
	InternalID  int       `json:"uid"`
	Slot        int       `json:"slot"`
	Status      string    `json:"status"`
	InitiatedAt time.Time `json:"initiated_at"`
}

type Coordinator struct {
	sessions *device.Manager
	addr     device.Address
}

func New(sessions *device.Manager, addr device.Address) *Coordinator {
	return &Coordinator{sessions: sessions, addr: addr}
}

// Begin resolves the external id to the terminal's internal index,
// issues the enrollment-start command for the given template slot and
// plays the confirmation prompt. It returns once device-side initiation
// succeeds; biometric capture continues at the terminal afterwards.
func (c *Coordinator) Begin(ctx context.Context, externalID string, slot int) (Ticket, error) {
	if slot == SlotUnset {
		slot = DefaultSlot
	}
	if slot < 0 || slot > MaxSlot {
		return Ticket{}, fmt.Errorf("template slot %d out of range 0-%d", slot, MaxSlot)
	}

	var ticket Ticket
	err := c.sessions.WithSession(ctx, c.addr, func(conn device.Conn) error {
		users, err := conn.Users()
		if err != nil {
			return err
		}
		uid := 0
		found := false
		for _, u := range users {
			if u.ExternalID == externalID {
				uid = u.UID
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUserNotFound, externalID)
		}

		if err := conn.Enroll(uid, slot); err != nil {
			return err
		}
		if err := conn.PlayPrompt(enrollPromptIndex); err != nil {
			return err
		}

		ticket = Ticket{
			ID:          uuid.NewString(),
			ExternalID:  externalID,
			InternalID:  uid,
			Slot:        slot,
			Status:      "initiated",
			InitiatedAt: time.Now(),
		}
		return nil
	})
	if err != nil {
		return Ticket{}, err
	}
	return ticket, nil
}
