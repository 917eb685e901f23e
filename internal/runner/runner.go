package runner

import (
	"context"
	"fmt"
	"time"

	"clicksim/internal/config"
	"clicksim/internal/core/clicker"
	"clicksim/internal/core/model"
	"clicksim/internal/surface"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result summarizes a headless run.
type Result struct {
	RunID      string
	ClickCount int
	Elapsed    time.Duration
	Reason     clicker.StopReason
	Recolors   int
}

// Runner drives the scheduler against an off-screen scene.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger
	scene  *surface.Scene
}

// New creates a runner with a scene sized from the runner config.
func New(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	scene := surface.NewScene(surface.DefaultConfig())
	scene.Resize(cfg.Runner.Width, cfg.Runner.Height)
	return &Runner{cfg: cfg, logger: logger, scene: scene}
}

// Scene returns the scene the runner clicks on.
func (runner *Runner) Scene() *surface.Scene {
	return runner.scene
}

// Run starts one click run and blocks until the click limit is reached, the
// configured duration elapses or ctx is cancelled. Cancellation is a normal
// way to end a run and is not reported as an error.
func (runner *Runner) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	logger := runner.logger.With(zap.String("run_id", result.RunID))

	settings, err := runner.settings()
	if err != nil {
		return result, err
	}

	engine := clicker.New(runner.scene, runner.scene, clicker.Options{
		ElapsedTick: runner.cfg.Clicker.ElapsedTick,
		FrameRate:   runner.cfg.Probe.FrameRate,
		Logger:      logger.Named("clicker"),
	})
	defer engine.Close()

	sink := func(x, y float64) {
		logger.Info("Click", zap.Float64("x", x), zap.Float64("y", y))
	}
	if err := engine.Start(settings, sink); err != nil {
		return result, fmt.Errorf("start clicker: %w", err)
	}
	stopped := engine.Stopped()

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if runner.cfg.Runner.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, runner.cfg.Runner.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		select {
		case <-stopped:
		case <-groupCtx.Done():
			engine.Stop()
		}
		cancel()
		return nil
	})
	if settings.Mode == model.ModeColorWatch && runner.cfg.Runner.CyclePeriod > 0 {
		cycler := surface.NewCycler(runner.scene, runner.cfg.Runner.CycleSwatch, runner.cfg.Runner.CyclePeriod, logger.Named("cycler"))
		group.Go(func() error {
			count, err := cycler.Run(groupCtx)
			result.Recolors = count
			return err
		})
	}
	err = group.Wait()
	engine.Stop()

	snapshot := engine.Snapshot()
	result.ClickCount = snapshot.ClickCount
	result.Elapsed = snapshot.Elapsed
	result.Reason = snapshot.LastStop
	logger.Info("Run finished",
		zap.Int("clicks", result.ClickCount),
		zap.Duration("elapsed", result.Elapsed),
		zap.String("reason", string(result.Reason)),
		zap.Int("recolors", result.Recolors),
	)
	if err != nil {
		return result, fmt.Errorf("run %s: %w", result.RunID, err)
	}
	return result, nil
}

// settings resolves the run settings. Color watch without a configured point
// watches the center of the cycled swatch.
func (runner *Runner) settings() (model.Settings, error) {
	settings, err := runner.cfg.Clicker.Settings()
	if err != nil {
		return settings, fmt.Errorf("clicker settings: %w", err)
	}
	if settings.Mode != model.ModeColorWatch || settings.MonitoringPoint != nil {
		return settings, nil
	}

	index := runner.cfg.Runner.CycleSwatch
	swatches := runner.scene.Swatches()
	if index < 0 || index >= len(swatches) {
		return settings, fmt.Errorf("monitoring point: %w: %d", surface.ErrNoSwatch, index)
	}
	bounds := swatches[index].Bounds
	point := model.Point{
		X: int(bounds.Left + bounds.Width/2),
		Y: int(bounds.Top + bounds.Height/2),
	}
	return settings.WithMonitoringPoint(&point), nil
}
