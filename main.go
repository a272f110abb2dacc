package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"

	"github.com/PrimChim/Attendance-zkteco/app/config"
	"github.com/PrimChim/Attendance-zkteco/app/database"
	"github.com/PrimChim/Attendance-zkteco/app/device"
	"github.com/PrimChim/Attendance-zkteco/app/device/devicetest"
	"github.com/PrimChim/Attendance-zkteco/app/directory"
	"github.com/PrimChim/Attendance-zkteco/app/enroll"
	attendanceroutes "github.com/PrimChim/Attendance-zkteco/app/routes/attendance"
	"github.com/PrimChim/Attendance-zkteco/app/routes/auth"
	"github.com/PrimChim/Attendance-zkteco/app/routes/users"
	"github.com/PrimChim/Attendance-zkteco/app/routes/web"
	"github.com/PrimChim/Attendance-zkteco/app/services"
)

func newTransport(cfg config.DeviceConfig) (device.Transport, error) {
	switch cfg.Driver {
	case "sim":
		log.Println("Using simulated terminal (DEVICE_DRIVER=sim)")
		term := devicetest.New()
		seedSimulator(term)
		return term, nil
	default:
		return nil, fmt.Errorf("unknown device driver %q", cfg.Driver)
	}
}

// seedSimulator gives the simulated terminal a small user table and some
// punches in the current month so the pages have something to show.
func seedSimulator(term *devicetest.Terminal) {
	now := time.Now()
	term.Seed(
		[]device.RawUser{
			{UID: 1, ExternalID: "1", Name: "Alice", Privilege: device.PrivilegeCodeAdmin},
			{UID: 2, ExternalID: "2", Name: "Bob"},
		},
		[]device.RawPunch{
			{ExternalID: "1", Timestamp: time.Date(now.Year(), now.Month(), 3, 8, 2, 0, 0, time.Local)},
			{ExternalID: "1", Timestamp: time.Date(now.Year(), now.Month(), 3, 17, 8, 0, 0, time.Local)},
			{ExternalID: "2", Timestamp: time.Date(now.Year(), now.Month(), 4, 8, 15, 0, 0, time.Local)},
		},
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize punch archive database
	if err := config.InitDB(); err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// Device session manager, one gate per terminal address
	transport, err := newTransport(cfg.Device)
	if err != nil {
		log.Fatal(err)
	}
	sessions := device.NewManager(transport)
	addr := device.Address{
		Host:    cfg.Device.Host,
		Port:    cfg.Device.Port,
		Timeout: cfg.Device.Timeout,
	}
	log.Printf("Managing terminal at %s", addr)

	// Start background archive refresh
	services.StartScheduler(config.GetDB(), sessions, addr, cfg.RefreshInterval, cfg.RetentionDays)

	// Initialize template engine
	engine := html.New("./app/templates", ".html")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layouts/main",
		ErrorHandler: web.ErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/users")
	})

	// Setup auth routes
	auth.SetupAuthRoutes(app)

	// Setup users routes
	users.SetupUsersRoutes(app, &users.Handlers{
		Directory: directory.New(sessions, addr),
		Enroll:    enroll.New(sessions, addr),
	})

	// Setup attendance routes
	attendanceroutes.SetupAttendanceRoutes(app, &attendanceroutes.Handlers{
		Sessions: sessions,
		Addr:     addr,
		DB:       config.GetDB(),
	})

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})

	// Start server
	log.Println("Server starting on " + cfg.Addr)
	log.Fatal(app.Listen(cfg.Addr))
}
