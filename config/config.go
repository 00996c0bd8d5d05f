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
	Env      string // development or production
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Razorpay RazorpayConfig
	Email    EmailConfig
	UltraMsg UltraMsgConfig
	Admin    AdminConfig
	Workshop WorkshopConfig
}

// RazorpayConfig holds the resolved gateway credentials. Test vs live keys
// are selected once at load time based on APP_ENV; handlers never re-read
// the environment.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// EmailConfig for the SMTP transport used for receipt emails.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// UltraMsgConfig for the WhatsApp messaging API.
type UltraMsgConfig struct {
	InstanceID string
	Token      string
	BaseURL    string
}

// AdminConfig seeds the admin user at boot when both fields are set.
type AdminConfig struct {
	Email    string
	Password string
}

// WorkshopConfig holds the logistics constants rendered into receipts and
// WhatsApp confirmations.
type WorkshopConfig struct {
	Name         string
	Host         string
	Date         string
	Time         string
	Duration     string
	Platform     string
	SupportEmail string
	SupportPhone string
	Website      string
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
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings. Empty Addr disables Redis;
// webhook dedup then relies on the upsert alone.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings for admin sessions.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the receipt archive bucket.
// Empty ReceiptsBucket disables archiving.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ReceiptsBucket  string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is; otherwise built from components.
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

	env := getEnv("APP_ENV", "development")

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "xourcebase"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "ap-south-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ReceiptsBucket:  getEnv("AWS_S3_RECEIPTS_BUCKET", ""),
		},
		Razorpay: resolveRazorpay(env),
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "no-reply@xourcebase.com"),
			FromName:    getEnv("EMAIL_FROM_NAME", "XourceBase"),
			SMTPHost:    getEnv("EMAIL_HOST", ""),
			SMTPPort:    getEnvInt("EMAIL_PORT", 587),
			SMTPUser:    getEnv("EMAIL_USER", ""),
			SMTPPass:    getEnv("EMAIL_PASS", ""),
		},
		UltraMsg: UltraMsgConfig{
			InstanceID: getEnv("ULTRAMSG_INSTANCE_ID", ""),
			Token:      getEnv("ULTRAMSG_TOKEN", ""),
			BaseURL:    getEnv("ULTRAMSG_BASE_URL", "https://api.ultramsg.com"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Workshop: WorkshopConfig{
			Name:         getEnv("WORKSHOP_NAME", "Career Accelerator Workshop"),
			Host:         getEnv("WORKSHOP_HOST", "Abhijeet Vishwakarma"),
			Date:         getEnv("WORKSHOP_DATE", "Saturday, 20th December 2025"),
			Time:         getEnv("WORKSHOP_TIME", "7:00 PM - 9:00 PM IST"),
			Duration:     getEnv("WORKSHOP_DURATION", "2 Hours Live Session"),
			Platform:     getEnv("WORKSHOP_PLATFORM", "Zoom (Link will be sent 1 hour before)"),
			SupportEmail: getEnv("SUPPORT_EMAIL", "contact@xourcebase.com"),
			SupportPhone: getEnv("SUPPORT_PHONE", "+91 87677 65307"),
			Website:      getEnv("WEBSITE_URL", "www.xourcebase.com"),
		},
	}
	return cfg, nil
}

// resolveRazorpay picks test keys in development and live keys otherwise.
// The webhook secret is shared across modes.
func resolveRazorpay(env string) RazorpayConfig {
	if strings.EqualFold(env, "development") {
		return RazorpayConfig{
			KeyID:         getEnv("RAZORPAY_TEST_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_TEST_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		}
	}
	return RazorpayConfig{
		KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
	}
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
