package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DeviceConfig addresses the physical terminal.
type DeviceConfig struct {
	Host    string
	Port    int
	Timeout time.Duration
	// Driver selects the transport implementation. "sim" ships in-repo;
	// real vendor wire drivers are selected by name.
	Driver string
}

type Config struct {
	Addr   string
	Device DeviceConfig

	DatabaseURL     string
	RetentionDays   int
	RefreshInterval time.Duration

	AdminEmail        string
	AdminPasswordHash string
	AdminTOTPSecret   string
	JWTSecret         string

	DB *sql.DB
}

var AppConfig *Config

// Load reads configuration from the environment (a .env file is picked
// up when present) and validates it once. There is no interactive
// prompting: a bad value fails startup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr: getenv("ADDR", ":8080"),
		Device: DeviceConfig{
			Host:   getenv("DEVICE_HOST", "192.168.1.201"),
			Driver: getenv("DEVICE_DRIVER", "sim"),
		},
		DatabaseURL:       getenv("DATABASE_URL", "host=localhost port=5432 user=postgres dbname=zkteco sslmode=disable"),
		AdminEmail:        getenv("ADMIN_EMAIL", "admin@localhost"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminTOTPSecret:   os.Getenv("ADMIN_TOTP_SECRET"),
		JWTSecret:         getenv("JWT_SECRET", "zkteco-manager-secret-key"), // default for development
	}

	var err error
	if cfg.Device.Port, err = intenv("DEVICE_PORT", 4370); err != nil {
		return nil, err
	}
	if cfg.Device.Port < 1 || cfg.Device.Port > 65535 {
		return nil, fmt.Errorf("DEVICE_PORT %d out of range", cfg.Device.Port)
	}
	if cfg.Device.Timeout, err = durenv("DEVICE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.Device.Timeout <= 0 {
		return nil, fmt.Errorf("DEVICE_TIMEOUT must be positive")
	}
	if cfg.Device.Host == "" {
		return nil, fmt.Errorf("DEVICE_HOST is required")
	}
	if cfg.RetentionDays, err = intenv("ARCHIVE_RETENTION_DAYS", 365); err != nil {
		return nil, err
	}
	if cfg.RetentionDays < 1 {
		return nil, fmt.Errorf("ARCHIVE_RETENTION_DAYS must be at least 1")
	}
	if cfg.RefreshInterval, err = durenv("ARCHIVE_REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

// InitDB opens the punch archive database and verifies the connection.
func InitDB() error {
	db, err := sql.Open("postgres", AppConfig.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err = db.Ping(); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	AppConfig.DB = db
	log.Println("Database connected successfully")
	return nil
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intenv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durenv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
