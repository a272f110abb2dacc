package users

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PrimChim/Attendance-zkteco/app/directory"
	"github.com/PrimChim/Attendance-zkteco/app/enroll"
	"github.com/PrimChim/Attendance-zkteco/app/models"
)

// requestTimeout bounds how long one request may queue for the device
// gate plus run its session.
const requestTimeout = 30 * time.Second

func requestCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), requestTimeout)
}

func parsePrivilege(s string) models.Privilege {
	if strings.EqualFold(s, "admin") {
		return models.PrivilegeAdmin
	}
	return models.PrivilegeStandard
}

func (h *Handlers) ListUsersAPI(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	users, err := h.Directory.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

func (h *Handlers) CreateUserAPI(c *fiber.Ctx) error {
	type CreateUserRequest struct {
		ExternalID string `json:"user_id"`
		Name       string `json:"name"`
		Password   string `json:"password"`
		Privilege  string `json:"privilege"`
		InternalID int    `json:"uid,omitempty"`
	}

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(400, "Invalid request")
	}
	if strings.TrimSpace(req.ExternalID) == "" {
		return fiber.NewError(400, "user_id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fiber.NewError(400, "name is required")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	users, err := h.Directory.Create(ctx, directory.CreateRequest{
		ExternalID: req.ExternalID,
		Name:       req.Name,
		Password:   req.Password,
		Privilege:  parsePrivilege(req.Privilege),
		InternalID: req.InternalID,
	})
	if err != nil {
		return err
	}

	return c.Status(201).JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

func (h *Handlers) UpdateUserAPI(c *fiber.Ctx) error {
	externalID := c.Params("externalId")

	type UpdateUserRequest struct {
		Name      *string `json:"name"`
		Password  *string `json:"password"`
		Privilege *string `json:"privilege"`
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(400, "Invalid request")
	}
	if req.Name == nil && req.Password == nil && req.Privilege == nil {
		return fiber.NewError(400, "No fields to update")
	}

	upd := directory.UpdateRequest{
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Privilege != nil {
		p := parsePrivilege(*req.Privilege)
		upd.Privilege = &p
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	user, err := h.Directory.Update(ctx, externalID, upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *Handlers) DeleteUserAPI(c *fiber.Ctx) error {
	externalID := c.Params("externalId")

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Directory.Delete(ctx, externalID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (h *Handlers) EnrollAPI(c *fiber.Ctx) error {
	externalID := c.Params("externalId")

	// Slot is a pointer so a caller can pick slot 0 explicitly; an
	// absent field falls back to the coordinator's default.
	type EnrollRequest struct {
		Slot *int `json:"slot"`
	}
	var req EnrollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(400, "Invalid request")
		}
	}
	slot := enroll.SlotUnset
	if req.Slot != nil {
		slot = *req.Slot
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	ticket, err := h.Enroll.Begin(ctx, externalID, slot)
	if err != nil {
		return err
	}

	// Initiated, not completed: capture finishes at the terminal and
	// cannot be observed from here.
	return c.JSON(fiber.Map{
		"status":  "initiated",
		"message": "Fingerprint enrollment initiated. Please complete the process on the device.",
		"ticket":  ticket,
	})
}
