package database

import (
	"database/sql"
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/models"
)

// SavePunches upserts retrieved punch events into the archive and
// returns the number of newly stored rows. The (user_id, punched_at)
// uniqueness makes a refresh cycle idempotent: re-pulling the same
// device log stores nothing twice.
func SavePunches(db *sql.DB, punches []models.PunchEvent) (int, error) {
	query := `INSERT INTO punch_archive (user_id, punched_at, punch_type, status)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id, punched_at) DO NOTHING`

	stored := 0
	for _, p := range punches {
		res, err := db.Exec(query, p.ExternalID, p.Timestamp, int(p.PunchType), p.Status)
		if err != nil {
			return stored, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			stored++
		}
	}
	return stored, nil
}

// GetPunchesByMonth retrieves archived punches whose timestamp falls in
// the given month, oldest first.
func GetPunchesByMonth(db *sql.DB, year int, month time.Month) ([]models.PunchEvent, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	query := `SELECT user_id, punched_at, punch_type, status
			  FROM punch_archive
			  WHERE punched_at >= $1 AND punched_at < $2
			  ORDER BY punched_at`

	rows, err := db.Query(query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []models.PunchEvent
	for rows.Next() {
		var p models.PunchEvent
		var punchType int
		if err := rows.Scan(&p.ExternalID, &p.Timestamp, &punchType, &p.Status); err != nil {
			return nil, err
		}
		p.PunchType = models.PunchType(punchType)
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// PrunePunchesBefore deletes archived punches older than the cutoff and
// returns how many rows were removed. The scheduler calls this with the
// configured retention window so the archive stays bounded.
func PrunePunchesBefore(db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM punch_archive WHERE punched_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
