// Package web holds fiber plumbing shared by the route packages.
package web

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/directory"
	"github.com/PrimChim/Attendance-zkteco/app/enroll"
)

// ErrorHandler maps domain errors to HTTP responses: JSON for API
// requests, rendered pages otherwise. Device-facing failures never
// escape as bare 500s.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, device.ErrUnreachable):
		code = fiber.StatusServiceUnavailable
		message = "Terminal unreachable"
	case errors.Is(err, device.ErrBusy), errors.Is(err, device.ErrTimeout):
		code = fiber.StatusServiceUnavailable
		message = "Terminal busy, try again"
		c.Set(fiber.HeaderRetryAfter, "5")
	case errors.Is(err, device.ErrTransport):
		code = fiber.StatusBadGateway
		message = "Terminal communication failed"
	case errors.Is(err, directory.ErrDuplicateID):
		code = fiber.StatusConflict
		message = "User ID already exists"
	case errors.Is(err, directory.ErrNotFound), errors.Is(err, enroll.ErrUserNotFound):
		code = fiber.StatusNotFound
		message = "User not found"
	default:
		// Retrieve the custom status code if it's a *fiber.Error
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
	}

	if code >= 500 {
		log.Printf("%s %s -> %d: %v", c.Method(), c.Path(), code, err)
	}

	if strings.HasPrefix(c.Path(), "/api") {
		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}

	return c.Status(code).Render("error", fiber.Map{
		"Title":        "Error - Terminal Manager",
		"CurrentPage":  "",
		"ErrorCode":    code,
		"ErrorMessage": message,
	})
}
