package database

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/PrimChim/Attendance-zkteco/app/models"
)

// Archive tests need a real PostgreSQL instance; set TEST_DATABASE_URL
// to run them, e.g.
// postgres://postgres@localhost:5432/zkteco_test?sslmode=disable
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Exec(`TRUNCATE punch_archive`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestSavePunchesIdempotent(t *testing.T) {
	db := testDB(t)

	ts := time.Date(2024, time.March, 5, 8, 1, 0, 0, time.Local)
	punches := []models.PunchEvent{
		{ExternalID: "1", Timestamp: ts},
		{ExternalID: "1", Timestamp: ts.Add(9 * time.Hour)},
	}

	stored, err := SavePunches(db, punches)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if stored != 2 {
		t.Errorf("first save stored %d, want 2", stored)
	}

	stored, err = SavePunches(db, punches)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if stored != 0 {
		t.Errorf("repeated save stored %d, want 0", stored)
	}
}

func TestPrunePunchesBefore(t *testing.T) {
	db := testDB(t)

	old := time.Date(2023, time.June, 1, 9, 0, 0, 0, time.Local)
	recent := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.Local)
	if _, err := SavePunches(db, []models.PunchEvent{
		{ExternalID: "1", Timestamp: old},
		{ExternalID: "1", Timestamp: recent},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	removed, err := PrunePunchesBefore(db, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("pruned %d rows, want 1", removed)
	}

	kept, err := GetPunchesByMonth(db, 2024, time.March)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("month query returned %d punches, want 1", len(kept))
	}
}
