package clicker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"clicksim/internal/core/model"

	"go.uber.org/zap"
)

const (
	// DefaultElapsedTick is how often elapsed time is sampled for observers.
	DefaultElapsedTick = 100 * time.Millisecond
	// DefaultFrameRate bounds color-watch polling, in frames per second.
	DefaultFrameRate = 60.0
)

// ColorProbe reads the rendered color at a coordinate. It never fails:
// nothing rendered at the coordinate is reported as model.Transparent.
type ColorProbe interface {
	SampleColorAt(x, y int) model.Color
}

// PointChecker is implemented by probes that can tell when a coordinate no
// longer exists, e.g. after the rendered surface shrank. Color watch stops
// with StopMonitoringLost once its point becomes unavailable.
type PointChecker interface {
	PointAvailable(x, y int) bool
}

// RegionProvider reports the bounds of the clickable target region.
type RegionProvider interface {
	TargetRegion() (model.Rect, bool)
}

// ClickFunc receives every simulated click. It must not block.
type ClickFunc func(x, y float64)

// Options contains runtime options for Clicker.
type Options struct {
	ElapsedTick time.Duration
	FrameRate   float64
	Clock       Clock
	Logger      *zap.Logger
	Rand        *rand.Rand

	// Pacer factories default to NewIntervalPacer and NewFramePacer.
	IntervalPacer func(period time.Duration) Pacer
	ElapsedPacer  func(period time.Duration) Pacer
	FramePacer    func() Pacer
}

// handle is an active trigger discipline owned by a run.
type handle interface {
	cancel()
}

type intervalHandle struct {
	pacer Pacer
	stop  context.CancelFunc
}

func (trigger *intervalHandle) cancel() {
	trigger.stop()
	trigger.pacer.Stop()
}

type watchHandle struct {
	pacer    Pacer
	stop     context.CancelFunc
	point    *model.Point
	baseline model.Color
	observed bool
}

func (trigger *watchHandle) cancel() {
	trigger.stop()
	trigger.pacer.Stop()
	trigger.baseline = model.Transparent
	trigger.observed = false
}

type run struct {
	settings model.Settings
	onClick  ClickFunc
	trigger  handle
	sampler  handle
	done     chan struct{}
}

var closedChannel = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Clicker decides when simulated clicks fire. All run state is owned by the
// Clicker and only changes through its methods.
type Clicker struct {
	mu      sync.Mutex
	probe   ColorProbe
	region  RegionProvider
	options Options
	clock   Clock
	logger  *zap.Logger
	rng     *rand.Rand

	current    *run
	running    bool
	closed     bool
	clickCount int
	elapsed    time.Duration
	startedAt  time.Time
	lastStop   StopReason

	events []chan Event
	wg     sync.WaitGroup
}

// New creates an idle Clicker reading colors from probe and target bounds
// from region.
func New(probe ColorProbe, region RegionProvider, options Options) *Clicker {
	if options.ElapsedTick <= 0 {
		options.ElapsedTick = DefaultElapsedTick
	}
	if options.FrameRate <= 0 {
		options.FrameRate = DefaultFrameRate
	}
	if options.Clock == nil {
		options.Clock = SystemClock
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Rand == nil {
		options.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	clock := options.Clock
	if options.IntervalPacer == nil {
		options.IntervalPacer = func(period time.Duration) Pacer {
			return NewIntervalPacer(clock, period)
		}
	}
	if options.ElapsedPacer == nil {
		options.ElapsedPacer = func(period time.Duration) Pacer {
			return NewIntervalPacer(clock, period)
		}
	}
	if options.FramePacer == nil {
		frameRate := options.FrameRate
		options.FramePacer = func() Pacer {
			return NewFramePacer(frameRate)
		}
	}

	return &Clicker{
		probe:   probe,
		region:  region,
		options: options,
		clock:   options.Clock,
		logger:  options.Logger,
		rng:     options.Rand,
	}
}

// Subscribe registers a new observer channel. Sends never block; a full
// channel drops events. Channels are closed by Close.
func (clicker *Clicker) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	if clicker.closed {
		close(ch)
		return ch
	}
	clicker.events = append(clicker.events, ch)
	return ch
}

// Start begins a run. It fails with a *ConfigurationError when settings are
// invalid and with ErrAlreadyRunning while a run is active; in both cases no
// state changes.
func (clicker *Clicker) Start(settings model.Settings, onClick ClickFunc) error {
	if err := settings.Validate(); err != nil {
		clicker.logger.Warn("refusing to start clicker", zap.Error(err))
		return &ConfigurationError{Err: err}
	}
	if onClick == nil {
		onClick = func(float64, float64) {}
	}
	settings = settings.Clone()

	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	if clicker.closed {
		return ErrClosed
	}
	if clicker.running {
		return ErrAlreadyRunning
	}

	current := &run{
		settings: settings,
		onClick:  onClick,
		done:     make(chan struct{}),
	}
	clicker.current = current
	clicker.running = true
	clicker.clickCount = 0
	clicker.elapsed = 0
	clicker.lastStop = StopNone
	clicker.startedAt = clicker.clock.Now()

	current.sampler = clicker.startSamplerLocked(current)
	switch settings.Mode {
	case model.ModeInterval:
		current.trigger = clicker.startIntervalLocked(current)
	case model.ModeColorWatch:
		current.trigger = clicker.startWatchLocked(current)
	}

	clicker.logger.Info("clicker started",
		zap.String("mode", string(settings.Mode)),
		zap.Duration("interval", settings.Interval),
		zap.Bool("limited", settings.Limited),
		zap.Int("click_limit", settings.ClickLimit),
	)
	clicker.emitLocked(Event{
		Type:  EventStarted,
		State: clicker.stateLocked(),
		At:    clicker.startedAt,
	})
	return nil
}

// Stop cancels the active run. Counters keep their last values. Calling Stop
// while idle is a no-op, and it is safe to call from inside the click sink.
func (clicker *Clicker) Stop() {
	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	clicker.stopLocked(StopManual)
}

// Reset stops any active run and zeroes the counters.
func (clicker *Clicker) Reset() {
	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	clicker.stopLocked(StopReset)
	clicker.current = nil
	clicker.clickCount = 0
	clicker.elapsed = 0
	clicker.emitLocked(Event{
		Type:  EventReset,
		State: StateIdle,
		At:    clicker.clock.Now(),
	})
}

// Close stops the Clicker for good, waits for its loops to exit and closes
// observer channels. It must not be called from inside the click sink.
func (clicker *Clicker) Close() {
	clicker.mu.Lock()
	clicker.stopLocked(StopClosed)
	clicker.closed = true
	events := clicker.events
	clicker.events = nil
	clicker.mu.Unlock()

	clicker.wg.Wait()
	for _, ch := range events {
		close(ch)
	}
}

// Stopped returns a channel closed when the current run ends. It is already
// closed while idle.
func (clicker *Clicker) Stopped() <-chan struct{} {
	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	if clicker.current == nil || !clicker.running {
		return closedChannel
	}
	return clicker.current.done
}

// Snapshot returns the observable run state.
func (clicker *Clicker) Snapshot() Snapshot {
	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	return Snapshot{
		State:      clicker.stateLocked(),
		Running:    clicker.running,
		ClickCount: clicker.clickCount,
		Elapsed:    clicker.elapsed,
		LastStop:   clicker.lastStop,
	}
}

// IsRunning reports whether a run is active.
func (clicker *Clicker) IsRunning() bool {
	return clicker.Snapshot().Running
}

// ClickCount returns the number of clicks in the current or last run.
func (clicker *Clicker) ClickCount() int {
	return clicker.Snapshot().ClickCount
}

// Elapsed returns the last sampled elapsed time.
func (clicker *Clicker) Elapsed() time.Duration {
	return clicker.Snapshot().Elapsed
}

// Baseline returns the last color observed at the monitoring point while a
// color-watch run is active.
func (clicker *Clicker) Baseline() (model.Color, bool) {
	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	if !clicker.running {
		return model.Transparent, false
	}
	trigger, ok := clicker.current.trigger.(*watchHandle)
	if !ok || !trigger.observed {
		return model.Transparent, false
	}
	return trigger.baseline, true
}

func (clicker *Clicker) startSamplerLocked(current *run) handle {
	ctx, stop := context.WithCancel(context.Background())
	sampler := &intervalHandle{
		pacer: clicker.options.ElapsedPacer(clicker.options.ElapsedTick),
		stop:  stop,
	}
	clicker.wg.Add(1)
	go clicker.elapsedLoop(ctx, current, sampler.pacer)
	return sampler
}

func (clicker *Clicker) startIntervalLocked(current *run) handle {
	ctx, stop := context.WithCancel(context.Background())
	trigger := &intervalHandle{
		pacer: clicker.options.IntervalPacer(current.settings.Interval),
		stop:  stop,
	}
	clicker.wg.Add(1)
	go clicker.intervalLoop(ctx, current, trigger.pacer)
	return trigger
}

func (clicker *Clicker) startWatchLocked(current *run) handle {
	ctx, stop := context.WithCancel(context.Background())
	trigger := &watchHandle{
		pacer: clicker.options.FramePacer(),
		stop:  stop,
		point: current.settings.MonitoringPoint,
	}
	trigger.baseline = clicker.sample(trigger.point)
	trigger.observed = true
	clicker.wg.Add(1)
	go clicker.watchLoop(ctx, current, trigger)
	return trigger
}

func (clicker *Clicker) elapsedLoop(ctx context.Context, current *run, pacer Pacer) {
	defer clicker.wg.Done()
	for {
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		clicker.mu.Lock()
		if !clicker.activeLocked(current) {
			clicker.mu.Unlock()
			return
		}
		clicker.recordElapsedLocked()
		clicker.emitLocked(Event{
			Type:       EventElapsed,
			State:      clicker.stateLocked(),
			ClickCount: clicker.clickCount,
			Elapsed:    clicker.elapsed,
			At:         clicker.clock.Now(),
		})
		clicker.mu.Unlock()
	}
}

func (clicker *Clicker) intervalLoop(ctx context.Context, current *run, pacer Pacer) {
	defer clicker.wg.Done()
	for {
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		if !clicker.fire(current) {
			return
		}
	}
}

// fire runs one interval trigger and reports whether the loop should go on.
func (clicker *Clicker) fire(current *run) bool {
	region, ok := clicker.targetRegion()
	if !ok {
		clicker.logger.Debug("target region unavailable, skipping tick")
		return true
	}

	clicker.mu.Lock()
	if !clicker.activeLocked(current) {
		clicker.mu.Unlock()
		return false
	}
	click := model.ClickEvent{
		X: region.Left + clicker.rng.Float64()*region.Width,
		Y: region.Top + clicker.rng.Float64()*region.Height,
	}
	clicker.mu.Unlock()

	current.onClick(click.X, click.Y)

	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	return clicker.countLocked(current, click)
}

func (clicker *Clicker) watchLoop(ctx context.Context, current *run, trigger *watchHandle) {
	defer clicker.wg.Done()
	for {
		if err := trigger.pacer.Wait(ctx); err != nil {
			return
		}
		if !clicker.poll(current, trigger) {
			return
		}
	}
}

// poll runs one color-watch frame and reports whether the loop should go on.
func (clicker *Clicker) poll(current *run, trigger *watchHandle) bool {
	point := trigger.point
	if !clicker.pointAvailable(point) {
		clicker.logger.Warn("monitoring point unavailable, stopping color watch")
		clicker.mu.Lock()
		defer clicker.mu.Unlock()
		if clicker.activeLocked(current) {
			clicker.stopLocked(StopMonitoringLost)
		}
		return false
	}

	sampled := clicker.sample(point)

	clicker.mu.Lock()
	if !clicker.activeLocked(current) {
		clicker.mu.Unlock()
		return false
	}
	if sampled == trigger.baseline {
		clicker.mu.Unlock()
		return true
	}
	clicker.mu.Unlock()

	click := model.ClickEvent{X: float64(point.X), Y: float64(point.Y)}
	current.onClick(click.X, click.Y)

	clicker.mu.Lock()
	defer clicker.mu.Unlock()
	if clicker.activeLocked(current) {
		trigger.baseline = sampled
	}
	return clicker.countLocked(current, click)
}

// countLocked records a click the sink has already received and applies the
// limit. The limiting click stops the run before the trigger returns. Only an
// active run counts, so the count is final once Stop or Reset returns, even
// for a click whose sink call was still in progress.
func (clicker *Clicker) countLocked(current *run, click model.ClickEvent) bool {
	if !clicker.activeLocked(current) {
		return false
	}
	clicker.clickCount++
	clicker.emitLocked(Event{
		Type:       EventClick,
		State:      clicker.stateLocked(),
		Click:      click,
		ClickCount: clicker.clickCount,
		Elapsed:    clicker.elapsed,
		At:         clicker.clock.Now(),
	})
	if current.settings.Limited && clicker.clickCount >= current.settings.ClickLimit {
		clicker.stopLocked(StopLimit)
		return false
	}
	return true
}

func (clicker *Clicker) stopLocked(reason StopReason) bool {
	if !clicker.running {
		return false
	}
	current := clicker.current
	clicker.recordElapsedLocked()
	clicker.running = false
	clicker.lastStop = reason

	if current.trigger != nil {
		current.trigger.cancel()
		current.trigger = nil
	}
	if current.sampler != nil {
		current.sampler.cancel()
		current.sampler = nil
	}
	close(current.done)

	clicker.logger.Info("clicker stopped",
		zap.String("reason", string(reason)),
		zap.Int("clicks", clicker.clickCount),
		zap.Duration("elapsed", clicker.elapsed),
	)
	clicker.emitLocked(Event{
		Type:       EventStopped,
		State:      StateIdle,
		Reason:     reason,
		ClickCount: clicker.clickCount,
		Elapsed:    clicker.elapsed,
		At:         clicker.clock.Now(),
	})
	return true
}

func (clicker *Clicker) activeLocked(current *run) bool {
	return clicker.running && clicker.current == current
}

func (clicker *Clicker) recordElapsedLocked() {
	elapsed := clicker.clock.Now().Sub(clicker.startedAt)
	if elapsed > clicker.elapsed {
		clicker.elapsed = elapsed
	}
}

func (clicker *Clicker) stateLocked() State {
	if !clicker.running || clicker.current == nil {
		return StateIdle
	}
	if clicker.current.settings.Mode == model.ModeColorWatch {
		return StateRunningColorWatch
	}
	return StateRunningInterval
}

func (clicker *Clicker) targetRegion() (model.Rect, bool) {
	if clicker.region == nil {
		return model.Rect{}, false
	}
	region, ok := clicker.region.TargetRegion()
	if !ok || region.Empty() {
		return model.Rect{}, false
	}
	return region, true
}

func (clicker *Clicker) pointAvailable(point *model.Point) bool {
	if point == nil {
		return false
	}
	checker, ok := clicker.probe.(PointChecker)
	return !ok || checker.PointAvailable(point.X, point.Y)
}

func (clicker *Clicker) sample(point *model.Point) model.Color {
	if clicker.probe == nil || point == nil {
		return model.Transparent
	}
	return clicker.probe.SampleColorAt(point.X, point.Y)
}

func (clicker *Clicker) emitLocked(event Event) {
	for _, ch := range clicker.events {
		select {
		case ch <- event:
		default:
		}
	}
}
