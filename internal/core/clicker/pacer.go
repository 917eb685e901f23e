package clicker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer suspends a trigger loop until its next scheduled invocation.
type Pacer interface {
	// Wait blocks until the next tick or until ctx is done.
	Wait(ctx context.Context) error
	// Stop releases the pacer. It is safe to call more than once.
	Stop()
}

// Ticker is the subset of time.Ticker a Clock hands out.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock provides time-related operations so tests can substitute them.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the default Clock backed by the time package.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (ticker *systemTicker) C() <-chan time.Time {
	return ticker.ticker.C
}

func (ticker *systemTicker) Stop() {
	ticker.ticker.Stop()
}

type intervalPacer struct {
	ticker Ticker
}

// NewIntervalPacer returns a pacer that fires on a fixed period.
func NewIntervalPacer(clock Clock, period time.Duration) Pacer {
	if clock == nil {
		clock = SystemClock
	}
	return &intervalPacer{ticker: clock.NewTicker(period)}
}

func (pacer *intervalPacer) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-pacer.ticker.C():
		return nil
	}
}

func (pacer *intervalPacer) Stop() {
	pacer.ticker.Stop()
}

type framePacer struct {
	limiter *rate.Limiter
}

// NewFramePacer returns a pacer bounded to framesPerSecond. The first Wait
// returns immediately.
func NewFramePacer(framesPerSecond float64) Pacer {
	if framesPerSecond <= 0 {
		framesPerSecond = DefaultFrameRate
	}
	return &framePacer{limiter: rate.NewLimiter(rate.Limit(framesPerSecond), 1)}
}

func (pacer *framePacer) Wait(ctx context.Context) error {
	return pacer.limiter.Wait(ctx)
}

func (pacer *framePacer) Stop() {}
