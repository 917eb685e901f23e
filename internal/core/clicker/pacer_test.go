package clicker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalPacerWaitsForTick(t *testing.T) {
	pacer := NewIntervalPacer(nil, 5*time.Millisecond)
	defer pacer.Stop()

	started := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(started), 4*time.Millisecond)
}

func TestIntervalPacerHonorsCancellation(t *testing.T) {
	pacer := NewIntervalPacer(SystemClock, time.Hour)
	defer pacer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pacer.Wait(ctx), context.Canceled)
}

func TestFramePacerBoundsRate(t *testing.T) {
	pacer := NewFramePacer(100)
	defer pacer.Stop()

	ctx := context.Background()
	started := time.Now()
	for i := 0; i < 6; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}
	// The first frame is immediate, the other five are 10ms apart.
	assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond)
}

func TestFramePacerHonorsCancellation(t *testing.T) {
	pacer := NewFramePacer(0.001)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, pacer.Wait(ctx))

	cancel()
	assert.Error(t, pacer.Wait(ctx))
}
