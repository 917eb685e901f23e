package surface

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cycler recolors one swatch on a fixed period so a color watcher has
// something to react to when nobody is tapping the stage.
type Cycler struct {
	scene  *Scene
	index  int
	period time.Duration
	logger *zap.Logger
}

// NewCycler creates a cycler for the given swatch.
func NewCycler(scene *Scene, index int, period time.Duration, logger *zap.Logger) *Cycler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cycler{scene: scene, index: index, period: period, logger: logger}
}

// Run recolors until ctx is done. It returns the number of recolors made.
func (cycler *Cycler) Run(ctx context.Context) (int, error) {
	if cycler.period <= 0 {
		<-ctx.Done()
		return 0, nil
	}
	ticker := time.NewTicker(cycler.period)
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, nil
		case <-ticker.C:
			next, err := cycler.scene.Recolor(cycler.index)
			if err != nil {
				return count, err
			}
			count++
			cycler.logger.Debug("Swatch recolored",
				zap.Int("swatch", cycler.index),
				zap.String("color", Describe(next)))
		}
	}
}
