package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is matched by every *ConfigError.
	ErrConfig = errors.New("sim: invalid configuration")

	// ErrCorrupted is returned by Tick once a committed state held NaN or
	// Inf. The handle must be rebuilt with New.
	ErrCorrupted = errors.New("sim: state corrupted")
)

// ConfigError reports a rejected configuration or rules update.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sim: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
