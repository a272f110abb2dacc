package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	query := `
		CREATE TABLE IF NOT EXISTS punch_archive (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id TEXT NOT NULL,
			punched_at TIMESTAMPTZ NOT NULL,
			punch_type INTEGER NOT NULL DEFAULT 0,
			status INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, punched_at)
		)`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	query = `CREATE INDEX IF NOT EXISTS idx_punch_archive_punched_at
			 ON punch_archive (punched_at)`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}
