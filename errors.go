package support

import (
	"errors"
	"fmt"
)

var (
	// ErrNoObject is returned when Generate is called without object layers.
	ErrNoObject = errors.New("support: no object layers")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("support: invalid configuration")
)

// assertf panics with a formatted message when cond is false and debug
// checks are enabled. Violations are engine bugs, not input errors.
func (r *run) assertf(cond bool, format string, args ...any) {
	if cond || !r.cfg.Debug {
		return
	}
	panic(fmt.Sprintf("support: internal error: "+format, args...))
}
