package envvar

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aatuh/envvar"
)

// Adapter provides environment variable access using the envvar library.
type Adapter struct{}

// New creates a new envvar adapter.
func New() *Adapter {
	return &Adapter{}
}

// LoadEnvFiles loads environment variables from the given files. Paths that
// do not exist are skipped, so a bare checkout runs without any .env file.
func (a *Adapter) LoadEnvFiles(paths []string) error {
	var existing []string
	for _, p := range paths {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			existing = append(existing, p)
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("stat env file %s: %w", p, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	envvar.MustLoadEnvVars(existing)
	return nil
}

// Get returns the raw value and presence indicator.
func (a *Adapter) Get(key string) (string, bool) {
	v := envvar.Get(key)
	return v, v != ""
}

// GetOr returns the value or default if not present.
func (a *Adapter) GetOr(key, def string) string {
	return envvar.GetOr(key, def)
}

// ParseBoolOr returns def when key is unset, and a parse error when it is
// set to something that is not a boolean.
func (a *Adapter) ParseBoolOr(key string, def bool) (bool, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	return strconv.ParseBool(strings.TrimSpace(v))
}

// ParseIntOr returns def when key is unset, and a parse error when it is set
// to something that is not an integer.
func (a *Adapter) ParseIntOr(key string, def int) (int, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

// ParseInt64Or is ParseIntOr for int64 values.
func (a *Adapter) ParseInt64Or(key string, def int64) (int64, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
}
