package attendance

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/PrimChim/Attendance-zkteco/app/attendance"
	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/routes/auth"
)

type Handlers struct {
	Sessions *device.Manager
	Addr     device.Address
	DB       *sql.DB
}

func SetupAttendanceRoutes(app *fiber.App, h *Handlers) {
	app.Get("/attendance", auth.AuthMiddleware, h.AttendancePage)
	app.Get("/attendance/export", auth.AuthMiddleware, h.ExportGridCSV)
	app.Get("/attendance/export/punches", auth.AuthMiddleware, h.ExportPunchesCSV)

	// API routes
	api := app.Group("/api/attendance")
	api.Use(auth.AuthMiddleware)
	api.Get("/", h.GetGridAPI)
	api.Post("/refresh", h.RefreshAPI)

	// Voice sweep shortcut for speaker checks on the terminal
	app.Post("/api/device/voice-test", auth.AuthMiddleware, h.VoiceTestAPI)
}

func (h *Handlers) AttendancePage(c *fiber.Ctx) error {
	year, month, err := parseMonth(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	snap, err := h.fetch(ctx)
	if err != nil {
		return err
	}
	grids := attendance.BuildMonthlyGrid(snap.Punches, snap.Users, year, month)

	return c.Render("attendance", fiber.Map{
		"Title":       "Attendance - Terminal Manager",
		"CurrentPage": "attendance",
		"Year":        year,
		"Month":       int(month),
		"Days":        attendance.DaysInMonth(year, month),
		"grids":       grids,
	})
}
