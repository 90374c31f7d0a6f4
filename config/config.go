package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Booking  BookingConfig
	Email    EmailConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/reservar?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MaxConns caps the pgx pool size. Zero leaves the pgx default in place.
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// BookingConfig holds reservation-core tuning knobs.
type BookingConfig struct {
	// SlotStepMinutes is the fixed step between generated availability slots.
	SlotStepMinutes int
	// DuplicateWindowSeconds is the window around a requested start within which
	// a second reservation by the same customer counts as a duplicate submit.
	DuplicateWindowSeconds int
	// TxAcquireTimeoutSec / TxExecTimeoutSec bound the booking transaction.
	// Exceeding either surfaces as a retryable timeout, never a hang.
	TxAcquireTimeoutSec int
	TxExecTimeoutSec    int
	// AvailabilityFailOpen: internal faults during availability computation are
	// absorbed into an empty slot list instead of an error response.
	AvailabilityFailOpen bool
	// DefaultTimezone applies when a tenant has no timezone configured.
	DefaultTimezone string
}

// EmailConfig for SMTP delivery of confirmations, cancellations and reminders.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	FrontendURL string // base for links in email bodies
}

// AdminConfig holds the bootstrap secret that authorizes onboarding-token issuance.
type AdminConfig struct {
	Secret string
	// RequireInviteToken gates public tenant creation behind a one-time token.
	RequireInviteToken bool
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/reservar?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "reservar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		Booking: BookingConfig{
			SlotStepMinutes:        getEnvInt("BOOKING_SLOT_STEP_MINUTES", 30),
			DuplicateWindowSeconds: getEnvInt("BOOKING_DUPLICATE_WINDOW_SEC", 60),
			TxAcquireTimeoutSec:    getEnvInt("BOOKING_TX_ACQUIRE_TIMEOUT_SEC", 10),
			TxExecTimeoutSec:       getEnvInt("BOOKING_TX_EXEC_TIMEOUT_SEC", 10),
			AvailabilityFailOpen:   getEnvBool("AVAILABILITY_FAIL_OPEN", true),
			DefaultTimezone:        getEnv("DEFAULT_TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@reservar.local"),
			FromName:    getEnv("EMAIL_FROM_NAME", "ReservAr"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Admin: AdminConfig{
			Secret:             getEnv("SUPER_ADMIN_SECRET", ""),
			RequireInviteToken: getEnvBool("ONBOARDING_REQUIRE_TOKEN", true),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}
