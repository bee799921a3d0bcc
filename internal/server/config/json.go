package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/imagifine/internal/flagx"
	"github.com/dmitrijs2005/imagifine/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	GatewayKeyID                 string         `json:"gateway_key_id"`
	GatewayKeySecret             string         `json:"gateway_key_secret"`
	GatewayBaseURL               string         `json:"gateway_base_url"`
	GatewayTimeout               timex.Duration `json:"gateway_timeout"`
	SMTPAddr                     string         `json:"smtp_addr"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	MailFrom                     string         `json:"mail_from"`
	AdminEmail                   string         `json:"admin_email"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins"`
	RateLimitRPS                 int            `json:"rate_limit_rps"`
	RateLimitBurst               int            `json:"rate_limit_burst"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.GatewayKeyID = c.GatewayKeyID
	config.GatewayKeySecret = c.GatewayKeySecret
	config.GatewayBaseURL = c.GatewayBaseURL
	if c.GatewayTimeout.Duration > 0 {
		config.GatewayTimeout = time.Duration(c.GatewayTimeout.Duration)
	}
	config.SMTPAddr = c.SMTPAddr
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.MailFrom = c.MailFrom
	config.AdminEmail = c.AdminEmail
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.RateLimitRPS > 0 {
		config.RateLimitRPS = c.RateLimitRPS
	}
	if c.RateLimitBurst > 0 {
		config.RateLimitBurst = c.RateLimitBurst
	}
}
