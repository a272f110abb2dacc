package attendance

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/PrimChim/Attendance-zkteco/app/models"
)

func TestWriteGridCSV(t *testing.T) {
	users := []models.UserRecord{{ExternalID: "1", Name: "Alice"}}
	punches := []models.PunchEvent{punch("1", "2024-03-05 08:01:00")}
	grids := BuildMonthlyGrid(punches, users, 2024, time.March)

	var buf bytes.Buffer
	if err := WriteGridCSV(&buf, grids, 31); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}

	header := rows[0]
	if header[0] != "UserId" || header[1] != "Username" || header[2] != "1" || header[len(header)-1] != "31" {
		t.Errorf("header: %v", header)
	}
	row := rows[1]
	if row[0] != "1" || row[1] != "Alice" {
		t.Errorf("row identity cells: %v", row[:2])
	}
	if row[2+4] != "P" { // day 5
		t.Errorf("day 5 cell: got %q, want P", row[2+4])
	}
	if row[2] != "A" {
		t.Errorf("day 1 cell: got %q, want A", row[2])
	}
}

func TestWritePunchCSV(t *testing.T) {
	users := []models.UserRecord{{ExternalID: "1", Name: "Alice"}}
	punches := []models.PunchEvent{
		punch("1", "2024-03-05 08:01:00"),
		punch("42", "2024-03-06 09:00:00"),
	}

	var buf bytes.Buffer
	if err := WritePunchCSV(&buf, punches, users); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "Username,Timestamp,Punch Type,Status\n") {
		t.Errorf("header: %q", out)
	}
	if !strings.Contains(out, "Alice,2024-03-05 08:01:00") {
		t.Errorf("resolved row missing: %q", out)
	}
	if !strings.Contains(out, "Unknown,2024-03-06 09:00:00") {
		t.Errorf("unresolved punch must export as Unknown: %q", out)
	}
}
