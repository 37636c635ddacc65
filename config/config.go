package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aatuh/ulid-toolkit/envvar"
	"github.com/aatuh/ulid-toolkit/logzap"
	"github.com/aatuh/ulid-toolkit/ports"
	"github.com/aatuh/ulid-toolkit/validation"
)

// Output formats accepted by Config.Format.
const (
	FormatText  = "text"
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// DefaultEnvFiles are loaded, when present, before reading the environment.
var DefaultEnvFiles = []string{".env", "/env/.env"}

type Config struct {
	Count       int    `env:"ULIDGEN_COUNT" flag:"count" validate:"min=1"`
	IntervalMs  int64  `env:"ULIDGEN_INTERVAL_MS" flag:"interval" validate:"min=0"`
	Nil         bool   `env:"ULIDGEN_NIL" flag:"nil"`
	Monotonic   bool   `env:"ULIDGEN_MONOTONIC" flag:"monotonic"`
	Format      string `env:"ULIDGEN_FORMAT" flag:"format" validate:"oneof=text plain json"`
	MetricsFile string `env:"ULIDGEN_METRICS_FILE" flag:"metrics-file"` // "" disables
	LogLevel    string `env:"LOG_LEVEL" flag:"log-level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Count:      1,
		IntervalMs: 100,
		Format:     FormatText,
		LogLevel:   "warn",
	}
}

// LoadFromEnv overlays environment variables on top of Default. A variable
// that is set but cannot be parsed is reported as a validation error for the
// matching flag; the returned Config then keeps the default for that field.
func LoadFromEnv(adapter *envvar.Adapter) (Config, error) {
	cfg := Default()
	var errs []validation.ValidationError
	check := func(field, key string, err error) {
		if err != nil {
			v, _ := adapter.Get(key)
			errs = append(errs, validation.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be %s", key, kindOf(err)),
				Value:   v,
			})
		}
	}

	count, err := adapter.ParseIntOr("ULIDGEN_COUNT", cfg.Count)
	check("count", "ULIDGEN_COUNT", err)
	interval, err := adapter.ParseInt64Or("ULIDGEN_INTERVAL_MS", cfg.IntervalMs)
	check("interval", "ULIDGEN_INTERVAL_MS", err)
	isNil, err := adapter.ParseBoolOr("ULIDGEN_NIL", cfg.Nil)
	check("nil", "ULIDGEN_NIL", err)
	mono, err := adapter.ParseBoolOr("ULIDGEN_MONOTONIC", cfg.Monotonic)
	check("monotonic", "ULIDGEN_MONOTONIC", err)

	if len(errs) == 0 {
		cfg.Count, cfg.IntervalMs, cfg.Nil, cfg.Monotonic = count, interval, isNil, mono
	}
	cfg.Format = adapter.GetOr("ULIDGEN_FORMAT", cfg.Format)
	cfg.MetricsFile = adapter.GetOr("ULIDGEN_METRICS_FILE", cfg.MetricsFile)
	cfg.LogLevel = adapter.GetOr("LOG_LEVEL", cfg.LogLevel)

	switch len(errs) {
	case 0:
		return cfg, nil
	case 1:
		return cfg, errs[0]
	default:
		return cfg, validation.ValidationErrors{Errors: errs}
	}
}

func kindOf(err error) string {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && numErr.Func == "ParseBool" {
		return "a boolean"
	}
	return "an integer"
}

// Normalize canonicalizes free-form values before validation: the log level
// is matched case-insensitively and "warning" becomes "warn".
func (c *Config) Normalize() {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if lvl, err := logzap.ParseLevel(c.LogLevel); err == nil {
		c.LogLevel = lvl.String()
	}
}

// Validate checks ranges and enumerations. A count of zero is rejected
// rather than clamped.
func (c Config) Validate(ctx context.Context, v ports.Validator) error {
	return v.ValidateStruct(ctx, c)
}

// Interval is the delay between two generated identifiers.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}
