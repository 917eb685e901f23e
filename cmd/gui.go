package main

import (
	"errors"
	"fmt"
	"time"

	"clicksim/internal/config"
	"clicksim/internal/core/clicker"
	"clicksim/internal/core/model"
	"clicksim/internal/observability"
	"clicksim/internal/platform"
	"clicksim/internal/surface"
	"clicksim/internal/ui/animation"
	"clicksim/internal/ui/controls"
	"clicksim/internal/ui/stage"
	"clicksim/internal/ui/stats"
	"clicksim/internal/ui/tray"
	"clicksim/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"
)

const eventBuffer = 64

func runGUI(cfg *config.Config) error {
	logger := observability.GetLogger()

	lock, err := platform.Acquire(appName, observability.Component("instance"))
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if activateErr := platform.Activate(appName); activateErr == nil {
			logger.Info("Window already open, asked it to come forward")
			return nil
		}
	}
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.Warn("Failed to release instance lock", zap.Error(releaseErr))
		}
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconIdle))

	ctrl, err := newController(fyneApp, cfg, observability.Component("gui"))
	if err != nil {
		return err
	}
	defer ctrl.engine.Close()
	lock.Serve(func() { fyne.Do(ctrl.show) })

	logger.Info("Window opened", zap.String("lock", lock.Address()))
	ctrl.window.ShowAndRun()
	return nil
}

// controller connects the scheduler to the window, the stage and the tray.
// Every method except forward runs on the fyne main goroutine.
type controller struct {
	app     fyne.App
	desktop desktop.App
	window  fyne.Window
	logger  *zap.Logger

	scene  *surface.Scene
	stage  *stage.Stage
	panel  *controls.Panel
	tray   *tray.Manager
	engine *clicker.Clicker

	// settings of the run being displayed
	settings model.Settings
}

func newController(fyneApp fyne.App, cfg *config.Config, logger *zap.Logger) (*controller, error) {
	settings, err := cfg.Clicker.Settings()
	if err != nil {
		return nil, fmt.Errorf("initial settings: %w", err)
	}

	ctrl := &controller{
		app:      fyneApp,
		logger:   logger,
		settings: settings,
	}

	ctrl.scene = surface.NewScene(surface.DefaultConfig())
	ctrl.stage = stage.New(ctrl.scene, animation.DefaultConfig())
	ctrl.engine = clicker.New(ctrl.scene, ctrl.scene, clicker.Options{
		ElapsedTick: cfg.Clicker.ElapsedTick,
		FrameRate:   cfg.Probe.FrameRate,
		Logger:      observability.Component("clicker"),
	})

	ctrl.panel = controls.New(settings, controls.Callbacks{
		OnStart: ctrl.start,
		OnStop:  ctrl.engine.Stop,
		OnReset: ctrl.reset,
		OnPick:  ctrl.stage.SetPicking,
	})
	ctrl.stage.SetOnPick(func(point model.Point, sampled model.Color) {
		ctrl.panel.SetMonitoring(point, sampled)
		ctrl.logger.Info("Monitoring point selected",
			zap.Int("x", point.X),
			zap.Int("y", point.Y),
			zap.String("color", surface.Describe(sampled)))
	})
	if settings.MonitoringPoint != nil {
		ctrl.stage.SetMonitoringPoint(settings.MonitoringPoint)
	}

	ctrl.window = fyneApp.NewWindow("Auto Clicker")
	ctrl.window.SetContent(container.NewBorder(nil, nil, container.NewVScroll(ctrl.panel.Content()), nil, ctrl.stage))
	ctrl.window.Resize(fyne.NewSize(960, 640))

	if desk, ok := fyneApp.(desktop.App); ok {
		ctrl.desktop = desk
		desk.SetSystemTrayIcon(resources.MustIcon(resources.IconIdle))
		ctrl.window.SetCloseIntercept(ctrl.window.Hide)
	}
	ctrl.tray = tray.New(ctrl.desktop, tray.Callbacks{
		OnShow:      ctrl.show,
		OnToggleRun: ctrl.toggleRun,
		OnReset:     ctrl.reset,
		OnQuit:      ctrl.quit,
	})

	go ctrl.forward(ctrl.engine.Subscribe(eventBuffer))
	return ctrl, nil
}

// forward hands scheduler events to the main goroutine until the
// scheduler is closed.
func (ctrl *controller) forward(events <-chan clicker.Event) {
	for event := range events {
		event := event
		fyne.Do(func() { ctrl.handleEvent(event) })
	}
}

func (ctrl *controller) handleEvent(event clicker.Event) {
	switch event.Type {
	case clicker.EventStarted:
		ctrl.panel.SetRunning(true)
		ctrl.stage.SetPicking(false)
		ctrl.stage.SetWatching(event.State == clicker.StateRunningColorWatch)
		ctrl.setRunning(true)
	case clicker.EventClick, clicker.EventElapsed:
		ctrl.updateStats(event.ClickCount, event.Elapsed)
	case clicker.EventStopped:
		ctrl.panel.SetRunning(false)
		ctrl.stage.SetWatching(false)
		ctrl.setRunning(false)
		ctrl.updateStats(event.ClickCount, event.Elapsed)
		if event.Reason == clicker.StopMonitoringLost {
			dialog.ShowInformation("Monitoring stopped",
				"The monitoring point is no longer on the stage. Pick a new one to keep watching.", ctrl.window)
		}
	case clicker.EventReset:
		ctrl.updateStats(0, 0)
	}
}

func (ctrl *controller) updateStats(clicks int, elapsed time.Duration) {
	current := stats.Stats{
		ClickCount: clicks,
		Elapsed:    elapsed,
		Interval:   ctrl.settings.Interval,
	}
	ctrl.panel.SetStats(current)
	ctrl.tray.SetStatus(stats.Format(current).Summary())
}

func (ctrl *controller) setRunning(running bool) {
	ctrl.tray.SetRunning(running)
	if ctrl.desktop == nil {
		return
	}
	variant := resources.IconIdle
	if running {
		variant = resources.IconActive
	}
	ctrl.desktop.SetSystemTrayIcon(resources.MustIcon(variant))
}

func (ctrl *controller) start(settings model.Settings) {
	ctrl.settings = settings
	if err := ctrl.engine.Start(settings, ctrl.ripple); err != nil {
		ctrl.logger.Warn("Start rejected", zap.Error(err))
		dialog.ShowError(err, ctrl.window)
	}
}

// ripple is the click sink. It runs on a scheduler goroutine.
func (ctrl *controller) ripple(x, y float64) {
	fyne.Do(func() { ctrl.stage.AddRipple(float32(x), float32(y)) })
}

func (ctrl *controller) show() {
	ctrl.window.Show()
	ctrl.window.RequestFocus()
}

func (ctrl *controller) toggleRun() {
	if ctrl.engine.IsRunning() {
		ctrl.engine.Stop()
		return
	}
	if !ctrl.panel.CanStart() {
		ctrl.window.Show()
		return
	}
	ctrl.start(ctrl.panel.Settings())
}

func (ctrl *controller) reset() {
	ctrl.engine.Reset()
	ctrl.stage.SetPicking(false)
	ctrl.stage.SetMonitoringPoint(nil)
	ctrl.stage.ClearRipples()
	ctrl.panel.SetPicking(false)
	ctrl.panel.ClearMonitoring()
	ctrl.logger.Info("Session reset")
}

func (ctrl *controller) quit() {
	ctrl.engine.Close()
	ctrl.app.Quit()
}
