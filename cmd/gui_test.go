package main

import (
	"testing"
	"time"

	"clicksim/internal/config"
	"clicksim/internal/core/clicker"
	"clicksim/internal/core/model"
	"clicksim/internal/ui/stats"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController(t *testing.T, mutate func(*config.Config)) *controller {
	t.Helper()
	fyneApp := test.NewTempApp(t)

	cfg := config.NewDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	ctrl, err := newController(fyneApp, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(ctrl.engine.Close)
	ctrl.stage.Resize(fyne.NewSize(432, 332))
	return ctrl
}

func TestEventsDriveThePanel(t *testing.T) {
	ctrl := newTestController(t, nil)

	ctrl.handleEvent(clicker.Event{Type: clicker.EventStarted, State: clicker.StateRunningInterval})
	assert.True(t, ctrl.panel.Running())

	ctrl.handleEvent(clicker.Event{Type: clicker.EventClick, ClickCount: 3, Elapsed: 1500 * time.Millisecond})
	assert.Equal(t, stats.Lines{Clicks: "3", Elapsed: "1.50", Rate: "2.00", Interval: "1000"}, ctrl.panel.StatsText())

	ctrl.handleEvent(clicker.Event{Type: clicker.EventStopped, Reason: clicker.StopLimit, ClickCount: 3, Elapsed: 2 * time.Second})
	assert.False(t, ctrl.panel.Running())
	assert.Equal(t, "2.00", ctrl.panel.StatsText().Elapsed)

	ctrl.handleEvent(clicker.Event{Type: clicker.EventReset, State: clicker.StateIdle})
	assert.Equal(t, "0", ctrl.panel.StatsText().Clicks)
	assert.Equal(t, "0.00", ctrl.panel.StatsText().Elapsed)
}

func TestColorWatchWithoutPointIsRejected(t *testing.T) {
	ctrl := newTestController(t, func(cfg *config.Config) {
		cfg.Clicker.Mode = string(model.ModeColorWatch)
	})

	settings := ctrl.panel.Settings()
	require.Nil(t, settings.MonitoringPoint)
	ctrl.start(settings)
	assert.False(t, ctrl.engine.IsRunning())
}

func TestPickingFeedsThePanel(t *testing.T) {
	ctrl := newTestController(t, func(cfg *config.Config) {
		cfg.Clicker.Mode = string(model.ModeColorWatch)
	})
	assert.False(t, ctrl.panel.CanStart())

	ctrl.stage.SetPicking(true)
	test.TapAt(ctrl.stage, fyne.NewPos(116, 91))

	settings := ctrl.panel.Settings()
	require.NotNil(t, settings.MonitoringPoint)
	assert.Equal(t, model.Point{X: 116, Y: 91}, *settings.MonitoringPoint)
	assert.True(t, ctrl.panel.CanStart())
}

func TestResetForgetsMonitoringPoint(t *testing.T) {
	ctrl := newTestController(t, func(cfg *config.Config) {
		cfg.Clicker.Mode = string(model.ModeColorWatch)
		cfg.Clicker.Monitor = config.MonitorConfig{Enabled: true, X: 116, Y: 91}
	})
	require.NotNil(t, ctrl.stage.MonitoringPoint())
	ctrl.stage.AddRipple(20, 20)

	ctrl.reset()

	assert.Nil(t, ctrl.stage.MonitoringPoint())
	assert.Nil(t, ctrl.panel.Settings().MonitoringPoint)
	assert.Zero(t, ctrl.stage.RippleCount())
}

func TestToggleRunStartsAndStops(t *testing.T) {
	ctrl := newTestController(t, nil)

	ctrl.toggleRun()
	assert.True(t, ctrl.engine.IsRunning())

	ctrl.toggleRun()
	assert.False(t, ctrl.engine.IsRunning())
	assert.Equal(t, clicker.StopManual, ctrl.engine.Snapshot().LastStop)
}

func TestShrinkingStageStopsColorWatch(t *testing.T) {
	ctrl := newTestController(t, func(cfg *config.Config) {
		cfg.Clicker.Mode = string(model.ModeColorWatch)
		cfg.Clicker.Monitor = config.MonitorConfig{Enabled: true, X: 316, Y: 116}
	})
	ctrl.start(ctrl.panel.Settings())
	require.True(t, ctrl.engine.IsRunning())

	ctrl.scene.Resize(200, 200)

	require.Eventually(t, func() bool { return !ctrl.engine.IsRunning() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, clicker.StopMonitoringLost, ctrl.engine.Snapshot().LastStop)
}
