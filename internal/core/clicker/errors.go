package clicker

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every error returned for invalid settings.
	ErrConfiguration = errors.New("invalid clicker configuration")
	// ErrAlreadyRunning is returned by Start while a run is active.
	ErrAlreadyRunning = errors.New("clicker already running")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("clicker closed")
)

// ConfigurationError reports a failed Start precondition. The scheduler is
// left idle when it is returned.
type ConfigurationError struct {
	Err error
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConfiguration, err.Err)
}

func (err *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, err.Err}
}
