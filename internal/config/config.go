// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Required variables are enforced by must(); optional
// ones fall back to sensible defaults.
type Config struct {
	Env          string // APP_ENV: application environment (dev/test/prod)
	Port         string // APP_PORT: HTTP port to listen on
	DBUser       string // DB_USER
	DBPass       string // DB_PASS (optional, empty allowed)
	DBHost       string // DB_HOST
	DBPort       string // DB_PORT
	DBName       string // DB_NAME
	JWTSecret    string // JWT_SECRET: secret used to sign access tokens
	AccessTTLMin int    // ACCESS_TOKEN_TTL_MIN: access token lifetime in minutes
	BcryptCost   int    // BCRYPT_COST: bcrypt cost for password hashing
	OTPTTLMin    int    // OTP_TTL_MIN: one-time code lifetime in minutes
	SMTPHost     string // SMTP_HOST: mail server host
	SMTPPort     int    // SMTP_PORT: mail server port
	SMTPUser     string // SMTP_USER: mail account (also the From address unless SMTP_FROM is set)
	SMTPPass     string // SMTP_PASS
	SMTPFrom     string // SMTP_FROM (optional)
	ExportDir    string // EXPORT_DIR: directory for generated loan reports
	AuthRPM      int    // AUTH_RATE_LIMIT_PER_MIN: requests per minute per IP on /auth (0 disables)
}

// Load reads configuration from the environment. Missing required variables
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 30),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		OTPTTLMin:    envInt("OTP_TTL_MIN", 5),
		SMTPHost:     must("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     must("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		ExportDir:    envStr("EXPORT_DIR", "exports"),
		AuthRPM:      envInt("AUTH_RATE_LIMIT_PER_MIN", 20),
	}
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}
	return cfg
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envStr returns the variable's value or the default when unset/empty.
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns the variable parsed as int, or the default when unset.
// An unparsable value is fatal, matching must()'s strictness.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
