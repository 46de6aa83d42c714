package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	PublicBaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RabbitURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	EmailReplyTo string

	StripeKey string

	DefaultLanguage string

	// Admin notifications: per-category destination overrides with a general
	// fallback, and per-category enable flags. Missing everywhere means the
	// notification is suppressed, not an error.
	AdminEmail           string
	AdminEmailBookings   string
	AdminEmailPayments   string
	AdminEmailWaitlist   string
	AdminNotifyBookings  bool
	AdminNotifyPayments  bool
	AdminNotifyWaitlist  bool
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "retreat_booking"),

		RabbitURL: getEnv("RABBITMQ_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "bookings@retreathub.example"),
		EmailReplyTo: getEnv("EMAIL_REPLY_TO", ""),

		StripeKey: getEnv("STRIPE_SECRET_KEY", ""),

		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		AdminEmail:          getEnv("ADMIN_EMAIL", ""),
		AdminEmailBookings:  getEnv("ADMIN_EMAIL_BOOKINGS", ""),
		AdminEmailPayments:  getEnv("ADMIN_EMAIL_PAYMENTS", ""),
		AdminEmailWaitlist:  getEnv("ADMIN_EMAIL_WAITLIST", ""),
		AdminNotifyBookings: getBool("ADMIN_NOTIFY_BOOKINGS", true),
		AdminNotifyPayments: getBool("ADMIN_NOTIFY_PAYMENTS", true),
		AdminNotifyWaitlist: getBool("ADMIN_NOTIFY_WAITLIST", true),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// AdminRecipient resolves the destination for an admin notification category
// through the ordered fallback chain: category-specific → general → empty
// (caller suppresses the send).
func (c *Config) AdminRecipient(category string) string {
	var specific string
	switch category {
	case "bookings":
		specific = c.AdminEmailBookings
	case "payments":
		specific = c.AdminEmailPayments
	case "waitlist":
		specific = c.AdminEmailWaitlist
	}
	if specific != "" {
		return specific
	}
	return c.AdminEmail
}

// AdminCategoryEnabled reports whether admin notifications for the category
// are switched on. Unknown categories default to enabled.
func (c *Config) AdminCategoryEnabled(category string) bool {
	switch category {
	case "bookings":
		return c.AdminNotifyBookings
	case "payments":
		return c.AdminNotifyPayments
	case "waitlist":
		return c.AdminNotifyWaitlist
	default:
		return true
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
