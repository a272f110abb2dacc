package attendance

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PrimChim/Attendance-zkteco/app/attendance"
	"github.com/PrimChim/Attendance-zkteco/app/models"
	"github.com/PrimChim/Attendance-zkteco/app/services"
)

const requestTimeout = 60 * time.Second

func requestCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), requestTimeout)
}

// parseMonth reads the year/month query parameters, defaulting to the
// current month like the original export tooling did.
func parseMonth(c *fiber.Ctx) (int, time.Month, error) {
	now := time.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))

	if year < 2000 || year > 2100 {
		return 0, 0, fiber.NewError(400, "year out of range")
	}
	if month < 1 || month > 12 {
		return 0, 0, fiber.NewError(400, "month must be 1-12")
	}
	return year, time.Month(month), nil
}

func (h *Handlers) fetch(ctx context.Context) (services.Snapshot, error) {
	return services.FetchSnapshot(ctx, h.Sessions, h.Addr)
}

// monthSnapshot picks the punch source for a month read. The default is
// the device's own log; ?source=archive serves months the device has
// already dropped from the punch archive instead.
func (h *Handlers) monthSnapshot(c *fiber.Ctx, year int, month time.Month) (services.Snapshot, error) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	switch src := c.Query("source", "device"); src {
	case "device":
		return h.fetch(ctx)
	case "archive":
		if h.DB == nil {
			return services.Snapshot{}, fiber.NewError(503, "archive is not configured")
		}
		return services.FetchArchivedMonth(ctx, h.Sessions, h.Addr, h.DB, year, month)
	default:
		return services.Snapshot{}, fiber.NewError(400, "source must be device or archive")
	}
}

func (h *Handlers) GetGridAPI(c *fiber.Ctx) error {
	year, month, err := parseMonth(c)
	if err != nil {
		return err
	}

	snap, err := h.monthSnapshot(c, year, month)
	if err != nil {
		return err
	}
	grids := attendance.BuildMonthlyGrid(snap.Punches, snap.Users, year, month)

	return c.JSON(fiber.Map{
		"year":  year,
		"month": int(month),
		"days":  attendance.DaysInMonth(year, month),
		"grids": grids,
		"count": len(grids),
	})
}

func (h *Handlers) RefreshAPI(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	archived, err := services.RefreshArchive(ctx, h.Sessions, h.Addr, h.DB)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Attendance fetched successfully",
		"archived": archived,
	})
}

// VoiceTestAPI sweeps the terminal's audible prompts for speaker
// checks. The sweep runs inside one session and is bounded by the same
// request deadline as every other device operation, so a hung terminal
// cannot hold the gate indefinitely.
func (h *Handlers) VoiceTestAPI(c *fiber.Ctx) error {
	type voiceRequest struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	req := voiceRequest{From: 0, To: 54}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(400, "Invalid request")
		}
	}
	if req.From < 0 || req.To < req.From {
		return fiber.NewError(400, "invalid prompt range")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	played, err := services.VoiceTest(ctx, h.Sessions, h.Addr, req.From, req.To)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"played": played})
}

func (h *Handlers) ExportGridCSV(c *fiber.Ctx) error {
	year, month, err := parseMonth(c)
	if err != nil {
		return err
	}

	snap, err := h.monthSnapshot(c, year, month)
	if err != nil {
		return err
	}
	grids := attendance.BuildMonthlyGrid(snap.Punches, snap.Users, year, month)

	var buf bytes.Buffer
	if err := attendance.WriteGridCSV(&buf, grids, attendance.DaysInMonth(year, month)); err != nil {
		return err
	}

	filename := fmt.Sprintf("attendance_%04d-%02d.csv", year, int(month))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

func (h *Handlers) ExportPunchesCSV(c *fiber.Ctx) error {
	year, month, err := parseMonth(c)
	if err != nil {
		return err
	}

	snap, err := h.monthSnapshot(c, year, month)
	if err != nil {
		return err
	}

	var monthPunches []models.PunchEvent
	for _, p := range snap.Punches {
		if p.Timestamp.Year() == year && p.Timestamp.Month() == month {
			monthPunches = append(monthPunches, p)
		}
	}

	var buf bytes.Buffer
	if err := attendance.WritePunchCSV(&buf, monthPunches, snap.Users); err != nil {
		return err
	}

	filename := fmt.Sprintf("punches_%04d-%02d.csv", year, int(month))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
