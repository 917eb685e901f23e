package clicker

import (
	"time"

	"clicksim/internal/core/model"
)

// State represents the scheduler mode.
type State string

const (
	StateIdle              State = "idle"
	StateRunningInterval   State = "running_interval"
	StateRunningColorWatch State = "running_color_watch"
)

// StopReason explains why a run ended.
type StopReason string

const (
	StopNone           StopReason = ""
	StopManual         StopReason = "manual"
	StopLimit          StopReason = "limit"
	StopMonitoringLost StopReason = "monitoring_lost"
	StopReset          StopReason = "reset"
	StopClosed         StopReason = "closed"
)

// EventType defines the type of Clicker event.
type EventType string

const (
	EventStarted EventType = "started"
	EventClick   EventType = "click"
	EventElapsed EventType = "elapsed"
	EventStopped EventType = "stopped"
	EventReset   EventType = "reset"
)

// Event represents a Clicker update for observers.
type Event struct {
	Type       EventType
	State      State
	Reason     StopReason
	Click      model.ClickEvent
	ClickCount int
	Elapsed    time.Duration
	At         time.Time
}

// Snapshot is a read-only view of the run state.
type Snapshot struct {
	State      State
	Running    bool
	ClickCount int
	Elapsed    time.Duration
	LastStop   StopReason
}
