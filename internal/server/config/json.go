package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/flagx"
	"github.com/dmitrijs2005/agencyhub/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Duration fields accept both strings ("1h") and integer nanoseconds.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr   string         `json:"endpoint_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	JWTSecret      string         `json:"jwt_secret"`
	TokenTTL       timex.Duration `json:"token_ttl"`
	ResetTicketTTL timex.Duration `json:"reset_ticket_ttl"`
	Environment    string         `json:"environment"`
	AppName        string         `json:"app_name"`
	AppHost        string         `json:"app_host"`
	AdminEmail     string         `json:"admin_email"`
	EmailDir       string         `json:"email_dir"`
	SMTPHost       string         `json:"smtp_host"`
	SMTPPort       int            `json:"smtp_port"`
	SMTPUser       string         `json:"smtp_user"`
	SMTPPassword   string         `json:"smtp_password"`
	FromEmail      string         `json:"from_email"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Missing flag means no file is
// loaded; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.JWTSecret != "" {
		config.JWTSecret = c.JWTSecret
	}
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = time.Duration(c.TokenTTL.Duration)
	}
	if c.ResetTicketTTL.Duration != 0 {
		config.ResetTicketTTL = time.Duration(c.ResetTicketTTL.Duration)
	}
	if c.Environment != "" {
		config.Environment = c.Environment
	}
	if c.AppName != "" {
		config.AppName = c.AppName
	}
	if c.AppHost != "" {
		config.AppHost = c.AppHost
	}
	if c.AdminEmail != "" {
		config.AdminEmail = c.AdminEmail
	}
	if c.EmailDir != "" {
		config.EmailDir = c.EmailDir
	}
	if c.SMTPHost != "" {
		config.SMTPHost = c.SMTPHost
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SMTPUser != "" {
		config.SMTPUser = c.SMTPUser
	}
	if c.SMTPPassword != "" {
		config.SMTPPassword = c.SMTPPassword
	}
	if c.FromEmail != "" {
		config.FromEmail = c.FromEmail
	}
}
