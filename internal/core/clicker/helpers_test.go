package clicker

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clicksim/internal/core/model"

	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// manualPacer hands out ticks only when a test asks for one. Every call to
// Wait is announced on waits so tests can tell when a trigger has finished.
type manualPacer struct {
	ticks   chan struct{}
	waits   chan struct{}
	stopped atomic.Bool
}

func newManualPacer() *manualPacer {
	return &manualPacer{
		ticks: make(chan struct{}),
		waits: make(chan struct{}, 1024),
	}
}

func (pacer *manualPacer) Wait(ctx context.Context) error {
	pacer.waits <- struct{}{}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-pacer.ticks:
		return nil
	}
}

func (pacer *manualPacer) Stop() {
	pacer.stopped.Store(true)
}

// awaitWait blocks until the loop is parked in Wait.
func (pacer *manualPacer) awaitWait(t *testing.T) {
	t.Helper()
	select {
	case <-pacer.waits:
	case <-time.After(waitTimeout):
		t.Fatal("loop never waited on pacer")
	}
}

// step releases one tick and blocks until the loop is parked again.
func (pacer *manualPacer) step(t *testing.T) {
	t.Helper()
	pacer.awaitWait(t)
	select {
	case pacer.ticks <- struct{}{}:
	case <-time.After(waitTimeout):
		t.Fatal("loop did not accept tick")
	}
}

// settle blocks until the loop parks in Wait again.
func (pacer *manualPacer) settle(t *testing.T) {
	t.Helper()
	pacer.awaitWait(t)
	// Put the announcement back so the next step sees it.
	pacer.waits <- struct{}{}
}

// assertNoMoreWaits checks the loop never asked for another tick.
func (pacer *manualPacer) assertNoMoreWaits(t *testing.T) {
	t.Helper()
	select {
	case <-pacer.waits:
		t.Fatal("loop asked for another tick after it should have exited")
	case <-time.After(20 * time.Millisecond):
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(d)
	clock.mu.Unlock()
}

func (clock *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{ch: make(chan time.Time)}
}

type fakeTicker struct {
	ch chan time.Time
}

func (ticker *fakeTicker) C() <-chan time.Time { return ticker.ch }
func (ticker *fakeTicker) Stop()               {}

// sequenceProbe returns colors in order, repeating the last one.
type sequenceProbe struct {
	mu      sync.Mutex
	colors  []model.Color
	calls   int
	sampled []model.Point
}

func (probe *sequenceProbe) SampleColorAt(x, y int) model.Color {
	probe.mu.Lock()
	defer probe.mu.Unlock()
	probe.sampled = append(probe.sampled, model.Point{X: x, Y: y})
	index := probe.calls
	probe.calls++
	if index >= len(probe.colors) {
		index = len(probe.colors) - 1
	}
	return probe.colors[index]
}

func (probe *sequenceProbe) Calls() int {
	probe.mu.Lock()
	defer probe.mu.Unlock()
	return probe.calls
}

type fixedRegion struct {
	mu        sync.Mutex
	rect      model.Rect
	available bool
}

func (region *fixedRegion) TargetRegion() (model.Rect, bool) {
	region.mu.Lock()
	defer region.mu.Unlock()
	return region.rect, region.available
}

func (region *fixedRegion) Set(rect model.Rect, available bool) {
	region.mu.Lock()
	region.rect = rect
	region.available = available
	region.mu.Unlock()
}

type clickRecorder struct {
	mu     sync.Mutex
	clicks []model.ClickEvent
}

func (recorder *clickRecorder) sink(x, y float64) {
	recorder.mu.Lock()
	recorder.clicks = append(recorder.clicks, model.ClickEvent{X: x, Y: y})
	recorder.mu.Unlock()
}

func (recorder *clickRecorder) Clicks() []model.ClickEvent {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]model.ClickEvent(nil), recorder.clicks...)
}

type fixture struct {
	clicker  *Clicker
	clock    *fakeClock
	probe    *sequenceProbe
	region   *fixedRegion
	recorder *clickRecorder

	mu       sync.Mutex
	interval []*manualPacer
	elapsed  []*manualPacer
	frames   []*manualPacer
}

func newFixture(t *testing.T, colors ...model.Color) *fixture {
	t.Helper()
	if len(colors) == 0 {
		colors = []model.Color{model.Transparent}
	}
	fx := &fixture{
		clock:    newFakeClock(),
		probe:    &sequenceProbe{colors: colors},
		region:   &fixedRegion{rect: model.Rect{Left: 0, Top: 0, Width: 200, Height: 100}, available: true},
		recorder: &clickRecorder{},
	}
	fx.clicker = New(fx.probe, fx.region, Options{
		Clock: fx.clock,
		Rand:  rand.New(rand.NewSource(7)),
		IntervalPacer: func(time.Duration) Pacer {
			return fx.track(&fx.interval)
		},
		ElapsedPacer: func(time.Duration) Pacer {
			return fx.track(&fx.elapsed)
		},
		FramePacer: func() Pacer {
			return fx.track(&fx.frames)
		},
	})
	t.Cleanup(fx.clicker.Close)
	return fx
}

func (fx *fixture) track(list *[]*manualPacer) Pacer {
	pacer := newManualPacer()
	fx.mu.Lock()
	*list = append(*list, pacer)
	fx.mu.Unlock()
	return pacer
}

func (fx *fixture) lastPacer(t *testing.T, list *[]*manualPacer) *manualPacer {
	t.Helper()
	fx.mu.Lock()
	defer fx.mu.Unlock()
	require.NotEmpty(t, *list, "no pacer created")
	return (*list)[len(*list)-1]
}

func (fx *fixture) intervalPacer(t *testing.T) *manualPacer {
	return fx.lastPacer(t, &fx.interval)
}

func (fx *fixture) elapsedPacer(t *testing.T) *manualPacer {
	return fx.lastPacer(t, &fx.elapsed)
}

func (fx *fixture) framePacer(t *testing.T) *manualPacer {
	return fx.lastPacer(t, &fx.frames)
}

func intervalSettings(limit int) model.Settings {
	return model.Settings{
		Mode:       model.ModeInterval,
		Interval:   100 * time.Millisecond,
		Limited:    limit > 0,
		ClickLimit: limit,
	}
}

func watchSettings(limit int, point model.Point) model.Settings {
	return model.Settings{
		Mode:            model.ModeColorWatch,
		Limited:         limit > 0,
		ClickLimit:      limit,
		MonitoringPoint: &point,
	}
}
