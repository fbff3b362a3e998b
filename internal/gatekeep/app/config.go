package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./gatekeep.db)

	OTPTTL         time.Duration // Optional: OTP validity window (default: 15m)
	OTPRecipient   string        // Required for real delivery: side-channel address codes are sent to
	SendGridAPIKey string        // Optional: empty means codes are logged instead of emailed
	MailFrom       string        // Optional: sender address for OTP mail
	MailFromName   string        // Optional: sender display name

	AllowedOrigins []string // Optional: CORS origins (default: http://localhost:5173)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:         getEnvOrDefault("GATEKEEP_DATABASE_FILE", "gatekeep.db"),
		OTPTTL:               getEnvDurationOrDefault("GATEKEEP_OTP_TTL", 15*time.Minute),
		OTPRecipient:         os.Getenv("GATEKEEP_OTP_RECIPIENT"),
		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		MailFrom:             getEnvOrDefault("GATEKEEP_MAIL_FROM", "no-reply@localhost"),
		MailFromName:         getEnvOrDefault("GATEKEEP_MAIL_FROM_NAME", "Gatekeep"),
		AllowedOrigins:       getEnvListOrDefault("GATEKEEP_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Fall back to interpreting a bare integer as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
