package users

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PrimChim/Attendance-zkteco/app/directory"
	"github.com/PrimChim/Attendance-zkteco/app/enroll"
	"github.com/PrimChim/Attendance-zkteco/app/routes/auth"
)

type Handlers struct {
	Directory *directory.Reconciler
	Enroll    *enroll.Coordinator
}

func SetupUsersRoutes(app *fiber.App, h *Handlers) {
	app.Get("/users", auth.AuthMiddleware, h.UsersPage)

	// API routes
	api := app.Group("/api/users")
	api.Use(auth.AuthMiddleware)
	api.Get("/", h.ListUsersAPI)
	api.Post("/", h.CreateUserAPI)
	api.Put("/:externalId", h.UpdateUserAPI)
	api.Delete("/:externalId", h.DeleteUserAPI)
	api.Post("/:externalId/enroll", h.EnrollAPI)
}

func (h *Handlers) UsersPage(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	users, err := h.Directory.List(ctx)
	if err != nil {
		return err
	}

	return c.Render("users", fiber.Map{
		"Title":       "Users - Terminal Manager",
		"CurrentPage": "users",
		"users":       users,
	})
}
