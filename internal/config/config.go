// Package config gathers process configuration from the environment into a
// single validated struct. Nothing else in the service reads env vars.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ovaphlow/pitchfork/service-auth-go/pkg/utilities"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Defaults applied when the matching variable is unset.
const (
	DefaultHTTPAddr       = "0.0.0.0:3000"
	DefaultSMTPHost       = "smtp.gmail.com"
	DefaultSMTPPort       = 587
	DefaultRequestTimeout = 10 * time.Second
	DefaultTokenTTL       = time.Hour
)

// Config is built once at startup and handed to constructors.
type Config struct {
	HTTPAddr       string        `json:"HTTP_ADDR"`
	RequestTimeout time.Duration `json:"REQUEST_TIMEOUT"`

	StoreDriver  string `json:"STORE_DRIVER"`
	MongoURI     string `json:"MONGO_URI"`
	DatabaseName string `json:"DATABASE_NAME"`
	DatabaseURL  string `json:"DATABASE_URL"`

	JWTSecret string        `json:"JWT_SECRET"`
	TokenTTL  time.Duration `json:"TOKEN_TTL"`

	SMTPEmail    string `json:"SMTP_EMAIL"`
	SMTPPassword string `json:"SMTP_PASSWORD"`
	SMTPHost     string `json:"SMTP_HOST"`
	SMTPPort     int    `json:"SMTP_PORT"`

	SnowflakeNode int64 `json:"SNOWFLAKE_NODE"`

	Log utilities.Config `json:"-"`
}

// Load reads the environment, applies defaults and validates the result.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     getenv("HTTP_ADDR", DefaultHTTPAddr),
		StoreDriver:  getenv("STORE_DRIVER", DriverMongo),
		MongoURI:     os.Getenv("MONGO_URI"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SMTPEmail:    os.Getenv("SMTP_EMAIL"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPHost:     getenv("SMTP_HOST", DefaultSMTPHost),
		Log:          utilities.ConfigFromEnv(),
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", DefaultTokenTTL); err != nil {
		return Config{}, err
	}
	port, err := intEnv("SMTP_PORT", DefaultSMTPPort)
	if err != nil {
		return Config{}, err
	}
	cfg.SMTPPort = int(port)
	if cfg.SnowflakeNode, err = intEnv("SNOWFLAKE_NODE", 1); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values. The Mongo settings are required for the
// mongo driver and DATABASE_URL for the postgres driver.
func (c Config) Validate() error {
	var mongoRules, pgRules []validation.Rule
	switch c.StoreDriver {
	case DriverMongo:
		mongoRules = append(mongoRules, validation.Required)
	case DriverPostgres:
		pgRules = append(pgRules, validation.Required)
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(DriverMongo, DriverPostgres)),
		validation.Field(&c.MongoURI, mongoRules...),
		validation.Field(&c.DatabaseName, mongoRules...),
		validation.Field(&c.DatabaseURL, pgRules...),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.SMTPEmail, validation.Required, is.Email),
		validation.Field(&c.SMTPPassword, validation.Required),
		validation.Field(&c.SMTPHost, validation.Required),
		validation.Field(&c.SMTPPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.SnowflakeNode, validation.Min(int64(0)), validation.Max(int64(1023))),
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
