package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PrimChim/Attendance-zkteco/app/config"
)

func LoginAPI(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		TOTPCode string `json:"totp_code,omitempty"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	cfg := config.AppConfig
	if req.Email != cfg.AdminEmail || cfg.AdminPasswordHash == "" ||
		!CheckPasswordHash(req.Password, cfg.AdminPasswordHash) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if !CheckTOTP(req.TOTPCode, cfg.AdminTOTPSecret) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid one-time code"})
	}

	token, err := GenerateJWT(req.Email)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	// Set JWT as HTTP-only cookie
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

func LogoutAPI(c *fiber.Ctx) error {
	// Clear JWT cookie
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.Redirect("/auth/login")
}
