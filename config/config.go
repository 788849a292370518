// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	OTPTTL          time.Duration
	RedisURL        string
	SMTP            SMTPConfig
	CORSOrigins     []string
	LogLevel        string
	ShutdownTimeout time.Duration
	// MetricsAPIKey guards /metrics when set.
	MetricsAPIKey string
}

// SMTPConfig is empty when OTP mails should only be logged.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     databaseURL(),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		TokenTTL:        durenv("TOKEN_TTL", 30*24*time.Hour),
		OTPTTL:          durenv("OTP_TTL", 15*time.Minute),
		RedisURL:        os.Getenv("REDIS_URL"),
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ShutdownTimeout: durenv("SHUTDOWN_TIMEOUT", 15*time.Second),
		MetricsAPIKey:   os.Getenv("METRICS_API_KEY"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     atoienv("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("MAIL_FROM", os.Getenv("SMTP_USER")),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL or DB_HOST/DB_NAME must be set")
	}
	if c.TokenTTL <= 0 || c.OTPTTL <= 0 {
		return errors.New("TOKEN_TTL and OTP_TTL must be positive")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), name, getenv("DB_PORT", "5432"),
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
