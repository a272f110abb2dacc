package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/database"
	"github.com/PrimChim/Attendance-zkteco/app/device"
)

// StartScheduler starts the background archive maintenance loop: every
// interval it pulls the device's attendance log into the punch archive
// and prunes rows older than the retention window, keeping the archive
// bounded.
func StartScheduler(db *sql.DB, sessions *device.Manager, addr device.Address, interval time.Duration, retentionDays int) {
	go func() {
		log.Printf("Scheduler started, refresh every %s, retention %d day(s)", interval, retentionDays)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), interval)

			if _, err := RefreshArchive(ctx, sessions, addr, db); err != nil {
				log.Printf("Scheduled archive refresh failed: %v", err)
			}

			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			if removed, err := database.PrunePunchesBefore(db, cutoff); err != nil {
				log.Printf("Archive prune failed: %v", err)
			} else if removed > 0 {
				log.Printf("Pruned %d archived punch(es) older than %s", removed, cutoff.Format("2006-01-02"))
			}

			cancel()
		}
	}()
}
