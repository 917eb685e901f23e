package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains animation timing values.
type Config struct {
	RippleLifetime    time.Duration
	RippleStartRadius float32
	RippleEndRadius   float32

	PulseOn  Range
	PulseOff Range
}

// RippleFrame returns the radius and opacity of a ripple at progress in [0, 1].
func (config Config) RippleFrame(progress float32) (float32, uint8) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	radius := config.RippleStartRadius + (config.RippleEndRadius-config.RippleStartRadius)*progress
	alpha := uint8(255 * (1 - progress))
	return radius, alpha
}

// Engine blinks the monitoring crosshair while a color watch runs.
type Engine struct {
	mu     sync.Mutex
	config Config
	apply  func(visible bool)
	cancel context.CancelFunc
	done   chan struct{}
	rng    *rand.Rand
}

// New creates a new animation engine. apply is called from the engine
// goroutine; UI callers must hop to the main thread themselves.
func New(config Config, apply func(visible bool)) *Engine {
	return &Engine{
		config: config,
		apply:  apply,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Config returns the timing values.
func (engine *Engine) Config() Config {
	return engine.config
}

// StartPulse starts the blink loop, replacing any running one.
func (engine *Engine) StartPulse(ctx context.Context) {
	engine.start(ctx, func(runCtx context.Context) {
		for {
			engine.apply(true)
			if !sleepWithContext(runCtx, engine.config.PulseOn.Random(engine.rng)) {
				return
			}
			engine.apply(false)
			if !sleepWithContext(runCtx, engine.config.PulseOff.Random(engine.rng)) {
				return
			}
		}
	})
}

// Stop terminates the blink loop and leaves the crosshair visible.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel, done := engine.cancel, engine.done
	engine.cancel, engine.done = nil, nil
	engine.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	engine.apply(true)
}

// Running reports whether a blink loop is active.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.cancel != nil
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.Stop()

	engine.mu.Lock()
	runCtx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done
	engine.mu.Unlock()

	go func() {
		defer close(done)
		run(runCtx)
	}()
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
