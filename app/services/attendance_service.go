package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/database"
	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/directory"
	"github.com/PrimChim/Attendance-zkteco/app/models"
)

// Snapshot is the user table and full attendance log pulled from the
// terminal in one session, so the two are consistent with each other.
type Snapshot struct {
	Users   []models.UserRecord
	Punches []models.PunchEvent
}

// FetchSnapshot retrieves users and punches inside a single session
// bracket. The grid engine runs on the result outside the critical
// section.
func FetchSnapshot(ctx context.Context, sessions *device.Manager, addr device.Address) (Snapshot, error) {
	var snap Snapshot
	err := sessions.WithSession(ctx, addr, func(conn device.Conn) error {
		rawUsers, err := conn.Users()
		if err != nil {
			return err
		}
		rawPunches, err := conn.Attendance()
		if err != nil {
			return err
		}
		snap = presentSnapshot(rawUsers, rawPunches)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// FetchArchivedMonth serves a month from the punch archive instead of
// the device's own log: the user table is still read live (the terminal
// is the system of record for users), but punches come from the
// archive, so months the device has already dropped remain readable
// and exportable until retention prunes them.
func FetchArchivedMonth(ctx context.Context, sessions *device.Manager, addr device.Address, db *sql.DB, year int, month time.Month) (Snapshot, error) {
	punches, err := database.GetPunchesByMonth(db, year, month)
	if err != nil {
		return Snapshot{}, err
	}

	var users []models.UserRecord
	err = sessions.WithSession(ctx, addr, func(conn device.Conn) error {
		raw, uerr := conn.Users()
		if uerr != nil {
			return uerr
		}
		users = directory.Present(raw)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Users: users, Punches: punches}, nil
}

// RefreshArchive pulls the device's attendance log and upserts it into
// the punch archive. Returns the number of newly archived punches.
func RefreshArchive(ctx context.Context, sessions *device.Manager, addr device.Address, db *sql.DB) (int, error) {
	snap, err := FetchSnapshot(ctx, sessions, addr)
	if err != nil {
		return 0, err
	}
	stored, err := database.SavePunches(db, snap.Punches)
	if err != nil {
		return stored, err
	}
	if stored > 0 {
		log.Printf("Archived %d new punch(es) from %s", stored, addr)
	}
	return stored, nil
}

// VoiceTest sweeps the terminal's audible prompts from index from to
// index to inclusive, for speaker checks. It stops at the first prompt
// the device rejects and returns how many prompts played.
func VoiceTest(ctx context.Context, sessions *device.Manager, addr device.Address, from, to int) (int, error) {
	played := 0
	err := sessions.WithSession(ctx, addr, func(conn device.Conn) error {
		for i := from; i <= to; i++ {
			if err := conn.PlayPrompt(i); err != nil {
				return err
			}
			played++
		}
		return nil
	})
	return played, err
}

func presentSnapshot(rawUsers []device.RawUser, rawPunches []device.RawPunch) Snapshot {
	snap := Snapshot{
		Users:   directory.Present(rawUsers),
		Punches: make([]models.PunchEvent, 0, len(rawPunches)),
	}
	for _, p := range rawPunches {
		snap.Punches = append(snap.Punches, models.PunchEvent{
			ExternalID: p.ExternalID,
			Timestamp:  p.Timestamp,
			PunchType:  models.PunchType(p.Punch),
			Status:     p.Status,
		})
	}
	return snap
}
