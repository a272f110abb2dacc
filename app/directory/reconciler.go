// Package directory reconciles caller-facing user records against the
// terminal's user table. The terminal is the system of record: every
// operation, reads included, runs inside a full device session bracket
// so no concurrent enrollment or mutation can interleave with it.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/models"
)

var (
	ErrDuplicateID = errors.New("user id already exists")
	ErrNotFound    = errors.New("user not found")
)

type Reconciler struct {
	sessions *device.Manager
	addr     device.Address
}

func New(sessions *device.Manager, addr device.Address) *Reconciler {
	return &Reconciler{sessions: sessions, addr: addr}
}

// CreateRequest describes a user to be written to the terminal.
// InternalID 0 means "assign the next free device index".
type CreateRequest struct {
	ExternalID string
	Name       string
	Password   string
	Privilege  models.Privilege
	InternalID int
}

// Create writes a new user to the terminal. It fails with ErrDuplicateID
// when the external id (or a caller-supplied internal id) is already
// taken, and returns the refreshed full user list on success so callers
// can present consistent state without a second session.
func (r *Reconciler) Create(ctx context.Context, req CreateRequest) ([]models.UserRecord, error) {
	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.ExternalID == "" {
		return nil, errors.New("user id is required")
	}

	var out []models.UserRecord
	err := r.sessions.WithSession(ctx, r.addr, func(conn device.Conn) error {
		existing, err := conn.Users()
		if err != nil {
			return err
		}

		uid := req.InternalID
		maxUID := 0
		for _, u := range existing {
			if u.ExternalID == req.ExternalID {
				return fmt.Errorf("%w: %s", ErrDuplicateID, req.ExternalID)
			}
			if uid != 0 && u.UID == uid {
				return fmt.Errorf("%w: internal index %d", ErrDuplicateID, uid)
			}
			if u.UID > maxUID {
				maxUID = u.UID
			}
		}
		if uid == 0 {
			uid = maxUID + 1
		}

		if err := conn.SetUser(device.RawUser{
			UID:        uid,
			ExternalID: req.ExternalID,
			Name:       req.Name,
			Privilege:  privilegeCode(req.Privilege),
			Password:   req.Password,
		}); err != nil {
			return err
		}

		refreshed, err := conn.Users()
		if err != nil {
			return err
		}
		out = Present(refreshed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the terminal's user table with privilege codes mapped to
// the two-value enum and blank names presented as "Unknown". The
// underlying device records are never modified.
func (r *Reconciler) List(ctx context.Context) ([]models.UserRecord, error) {
	var out []models.UserRecord
	err := r.sessions.WithSession(ctx, r.addr, func(conn device.Conn) error {
		raw, err := conn.Users()
		if err != nil {
			return err
		}
		out = Present(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRequest carries the fields to change; nil means keep.
type UpdateRequest struct {
	Name      *string
	Password  *string
	Privilege *models.Privilege
}

// Update overwrites an existing user on the terminal, keyed by external
// id. The device's set-user verb upserts by internal index, so the write
// reuses the record's existing index.
func (r *Reconciler) Update(ctx context.Context, externalID string, req UpdateRequest) (models.UserRecord, error) {
	var out models.UserRecord
	err := r.sessions.WithSession(ctx, r.addr, func(conn device.Conn) error {
		raw, err := conn.Users()
		if err != nil {
			return err
		}
		cur, ok := find(raw, externalID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, externalID)
		}
		if req.Name != nil {
			cur.Name = *req.Name
		}
		if req.Password != nil {
			cur.Password = *req.Password
		}
		if req.Privilege != nil {
			cur.Privilege = privilegeCode(*req.Privilege)
		}
		if err := conn.SetUser(cur); err != nil {
			return err
		}
		out = presentOne(cur)
		return nil
	})
	if err != nil {
		return models.UserRecord{}, err
	}
	return out, nil
}

// Delete removes a user from the terminal's table, keyed by external id.
func (r *Reconciler) Delete(ctx context.Context, externalID string) error {
	return r.sessions.WithSession(ctx, r.addr, func(conn device.Conn) error {
		raw, err := conn.Users()
		if err != nil {
			return err
		}
		if _, ok := find(raw, externalID); !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, externalID)
		}
		return conn.DeleteUser(externalID)
	})
}

func find(raw []device.RawUser, externalID string) (device.RawUser, bool) {
	for _, u := range raw {
		if u.ExternalID == externalID {
			return u, true
		}
	}
	return device.RawUser{}, false
}

// Present maps raw device records to caller-facing ones: privilege code
// to enum, blank or padded names to "Unknown".
func Present(raw []device.RawUser) []models.UserRecord {
	out := make([]models.UserRecord, 0, len(raw))
	for _, u := range raw {
		out = append(out, presentOne(u))
	}
	return out
}

func presentOne(u device.RawUser) models.UserRecord {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = "Unknown"
	}
	priv := models.PrivilegeStandard
	if u.Privilege != device.PrivilegeCodeDefault {
		priv = models.PrivilegeAdmin
	}
	return models.UserRecord{
		InternalID: u.UID,
		ExternalID: u.ExternalID,
		Name:       name,
		Privilege:  priv,
		Password:   u.Password,
		GroupID:    u.GroupID,
	}
}

func privilegeCode(p models.Privilege) int {
	if p == models.PrivilegeAdmin {
		return device.PrivilegeCodeAdmin
	}
	return device.PrivilegeCodeDefault
}
