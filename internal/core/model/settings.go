package model

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects which trigger discipline decides when a click fires.
type Mode string

const (
	ModeInterval   Mode = "interval"
	ModeColorWatch Mode = "color_watch"
)

// MinInterval is the shortest interval the control surface accepts.
const MinInterval = 10 * time.Millisecond

var (
	ErrMissingMonitoringPoint = errors.New("color watch mode requires a monitoring point")
	ErrInvalidInterval        = errors.New("interval must be positive")
	ErrInvalidClickLimit      = errors.New("click limit must be positive")
	ErrUnknownMode            = errors.New("unknown trigger mode")
)

// Settings describes a single clicker run. It is replaced wholesale on every
// change and never mutated by the scheduler.
type Settings struct {
	Interval        time.Duration
	ClickLimit      int
	Limited         bool
	Mode            Mode
	MonitoringPoint *Point
}

// DefaultSettings returns the settings the control panel opens with.
func DefaultSettings() Settings {
	return Settings{
		Interval:   time.Second,
		ClickLimit: 10,
		Limited:    true,
		Mode:       ModeInterval,
	}
}

// ParseMode converts a textual mode into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeInterval:
		return ModeInterval, nil
	case ModeColorWatch, "color":
		return ModeColorWatch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

// Validate checks the preconditions a scheduler needs before it may start.
// Fields that the selected mode ignores are not checked.
func (settings Settings) Validate() error {
	switch settings.Mode {
	case ModeInterval:
		if settings.Interval <= 0 {
			return ErrInvalidInterval
		}
	case ModeColorWatch:
		if settings.MonitoringPoint == nil {
			return ErrMissingMonitoringPoint
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, settings.Mode)
	}
	if settings.Limited && settings.ClickLimit <= 0 {
		return ErrInvalidClickLimit
	}
	return nil
}

// Clone returns a copy that shares no pointers with the receiver.
func (settings Settings) Clone() Settings {
	if settings.MonitoringPoint != nil {
		point := *settings.MonitoringPoint
		settings.MonitoringPoint = &point
	}
	return settings
}

// WithMonitoringPoint returns a copy with the monitoring point replaced.
func (settings Settings) WithMonitoringPoint(point *Point) Settings {
	settings.MonitoringPoint = nil
	if point != nil {
		copied := *point
		settings.MonitoringPoint = &copied
	}
	return settings
}
