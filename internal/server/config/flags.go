package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/imagifine/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k string   payment gateway key id
//	-x string   payment gateway key secret
//	-g string   payment gateway base URL
//	-m string   SMTP address (host:port)
//	-f string   mail From address
//	-e string   admin alert email
//	-o string   comma-separated CORS origins
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-k", "-x", "-g", "-m", "-f", "-e", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.GatewayKeyID, "k", config.GatewayKeyID, "payment gateway key id")
	fs.StringVar(&config.GatewayKeySecret, "x", config.GatewayKeySecret, "payment gateway key secret")
	fs.StringVar(&config.GatewayBaseURL, "g", config.GatewayBaseURL, "payment gateway base URL")
	fs.StringVar(&config.SMTPAddr, "m", config.SMTPAddr, "SMTP address (host:port)")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "mail From address")
	fs.StringVar(&config.AdminEmail, "e", config.AdminEmail, "admin alert email")

	corsOrigins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "comma-separated CORS origins")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.CORSAllowedOrigins = strings.Split(*corsOrigins, ",")
}
