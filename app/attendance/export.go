package attendance

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/PrimChim/Attendance-zkteco/app/models"
)

// WriteGridCSV writes grids as a table with header
// UserId, Username, 1..days and one P/A cell per day.
func WriteGridCSV(w io.Writer, grids []models.AttendanceGrid, days int) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, days+2)
	header = append(header, "UserId", "Username")
	for d := 1; d <= days; d++ {
		header = append(header, strconv.Itoa(d))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, g := range grids {
		row := make([]string, 0, len(g.Days)+2)
		row = append(row, g.ExternalID, g.DisplayName)
		for _, day := range g.Days {
			row = append(row, day.Cell())
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WritePunchCSV writes the raw punch log with usernames resolved from
// the directory, "Unknown" when a punch has no matching record.
func WritePunchCSV(w io.Writer, punches []models.PunchEvent, users []models.UserRecord) error {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ExternalID] = u.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Username", "Timestamp", "Punch Type", "Status"}); err != nil {
		return err
	}
	for _, p := range punches {
		name, ok := names[p.ExternalID]
		if !ok {
			name = "Unknown"
		}
		if err := cw.Write([]string{
			name,
			p.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.Itoa(int(p.PunchType)),
			strconv.Itoa(p.Status),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
