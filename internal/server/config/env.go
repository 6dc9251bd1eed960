package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config values from environment variables. Only variables
// that are set and parseable take effect.
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("JWT_SECRET", &config.JWTSecret)
	setString("ENVIRONMENT", &config.Environment)
	setString("APP_NAME", &config.AppName)
	setString("APP_HOST", &config.AppHost)
	setString("ADMIN_EMAIL", &config.AdminEmail)
	setString("EMAIL_DIR", &config.EmailDir)
	setString("SMTP_HOST", &config.SMTPHost)
	setString("SMTP_USER", &config.SMTPUser)
	setString("SMTP_PASSWORD", &config.SMTPPassword)
	setString("FROM_EMAIL", &config.FromEmail)

	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.SMTPPort = port
		}
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenTTL = d
		}
	}
	if v, ok := os.LookupEnv("RESET_TICKET_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.ResetTicketTTL = d
		}
	}
}
