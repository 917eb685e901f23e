package runner

import (
	"context"
	"testing"
	"time"

	"clicksim/internal/config"
	"clicksim/internal/core/clicker"
	"clicksim/internal/surface"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Clicker.Interval = 20 * time.Millisecond
	cfg.Clicker.ClickLimit = 3
	cfg.Clicker.ElapsedTick = 10 * time.Millisecond
	cfg.Probe.FrameRate = 200
	cfg.Runner.CyclePeriod = 15 * time.Millisecond
	return cfg
}

var ignoreVolatile = cmpopts.IgnoreFields(Result{}, "RunID", "Elapsed", "Recolors")

func TestIntervalRunStopsAtLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zap.InfoLevel)
	result, err := New(testConfig(), zap.New(core)).Run(context.Background())
	require.NoError(t, err)

	want := Result{ClickCount: 3, Reason: clicker.StopLimit}
	if diff := cmp.Diff(want, result, ignoreVolatile); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Greater(t, result.Elapsed, time.Duration(0))

	clicks := logs.FilterMessage("Click").All()
	require.Len(t, clicks, 3)
	for _, entry := range clicks {
		assert.Equal(t, result.RunID, entry.ContextMap()["run_id"])
	}
	assert.Equal(t, 1, logs.FilterMessage("Run finished").Len())
}

func TestColorWatchReactsToCycledSwatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Clicker.Mode = "color_watch"
	cfg.Clicker.ClickLimit = 2
	cfg.Runner.CycleSwatch = 1

	result, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)

	want := Result{ClickCount: 2, Reason: clicker.StopLimit}
	if diff := cmp.Diff(want, result, ignoreVolatile); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
	assert.GreaterOrEqual(t, result.Recolors, 2)
}

func TestDurationEndsUnlimitedRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Clicker.Limited = false
	cfg.Runner.Duration = 90 * time.Millisecond

	started := time.Now()
	result, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 90*time.Millisecond)
	assert.Equal(t, clicker.StopManual, result.Reason)
	assert.Positive(t, result.ClickCount)
}

func TestCancelledContextEndsRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Clicker.Limited = false
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(cfg, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, clicker.StopManual, result.Reason)
}

func TestColorWatchRejectsUnknownSwatch(t *testing.T) {
	cfg := testConfig()
	cfg.Clicker.Mode = "color_watch"
	cfg.Runner.CycleSwatch = 5

	_, err := New(cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, surface.ErrNoSwatch)
}

func TestConfiguredMonitoringPointIsUsed(t *testing.T) {
	cfg := testConfig()
	cfg.Clicker.Mode = "color_watch"
	cfg.Clicker.Monitor = config.MonitorConfig{Enabled: true, X: 1, Y: 1}

	settings, err := New(cfg, nil).settings()
	require.NoError(t, err)
	require.NotNil(t, settings.MonitoringPoint)
	assert.Equal(t, 1, settings.MonitoringPoint.X)
}
