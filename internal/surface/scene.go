package surface

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"clicksim/internal/core/model"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrNoSwatch indicates a swatch index outside the scene.
var ErrNoSwatch = errors.New("no such swatch")

// Anchor places a swatch center as a fraction of the target region.
type Anchor struct {
	X float64
	Y float64
}

// SwatchConfig defines a single color swatch.
type SwatchConfig struct {
	Anchor Anchor
	Color  model.Color
}

// Config contains the scene geometry and palette.
type Config struct {
	Padding     float64
	SwatchSize  float64
	Background  model.Color
	RegionColor model.Color
	Swatches    []SwatchConfig
}

// DefaultConfig returns the stage layout of the simulator window.
func DefaultConfig() Config {
	return Config{
		Padding:     16,
		SwatchSize:  96,
		Background:  model.RGB(17, 24, 39),
		RegionColor: model.RGB(31, 41, 55),
		Swatches: []SwatchConfig{
			{Anchor: Anchor{X: 0.25, Y: 0.25}, Color: model.RGB(220, 38, 38)},
			{Anchor: Anchor{X: 0.5, Y: 0.75}, Color: model.RGB(34, 197, 94)},
			{Anchor: Anchor{X: 0.75, Y: 1.0 / 3}, Color: model.RGB(59, 130, 246)},
		},
	}
}

// Swatch is a rendered swatch in stage coordinates.
type Swatch struct {
	Bounds model.Rect
	Color  model.Color
}

// Scene is the model the stage renders. It answers color and geometry queries
// for the clicker and is safe for concurrent use.
type Scene struct {
	mu       sync.RWMutex
	config   Config
	width    float64
	height   float64
	colors   []model.Color
	rng      *rand.Rand
	onChange []func()
}

// NewScene creates a scene with zero size. Call Resize once the stage is laid out.
func NewScene(config Config) *Scene {
	colors := make([]model.Color, len(config.Swatches))
	for index, swatch := range config.Swatches {
		colors[index] = swatch.Color
	}
	return &Scene{
		config: config,
		colors: colors,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// OnChange registers a callback fired after any color change. Callbacks run on
// the goroutine that made the change.
func (scene *Scene) OnChange(handler func()) {
	scene.mu.Lock()
	scene.onChange = append(scene.onChange, handler)
	scene.mu.Unlock()
}

// Resize updates the stage size.
func (scene *Scene) Resize(width, height float64) {
	scene.mu.Lock()
	scene.width = width
	scene.height = height
	scene.mu.Unlock()
}

// Size returns the stage size.
func (scene *Scene) Size() (float64, float64) {
	scene.mu.RLock()
	defer scene.mu.RUnlock()
	return scene.width, scene.height
}

// Config returns the scene configuration.
func (scene *Scene) Config() Config {
	return scene.config
}

// TargetRegion returns the clickable region. It is unavailable until the
// stage is large enough to hold it.
func (scene *Scene) TargetRegion() (model.Rect, bool) {
	scene.mu.RLock()
	defer scene.mu.RUnlock()
	region := scene.regionLocked()
	return region, !region.Empty()
}

// SampleColorAt returns the color rendered at an integer stage coordinate.
func (scene *Scene) SampleColorAt(x, y int) model.Color {
	return scene.ColorAt(float64(x), float64(y))
}

// PointAvailable reports whether a pixel coordinate lies on the stage. A
// monitoring point picked on a larger stage becomes unavailable when the
// stage shrinks past it.
func (scene *Scene) PointAvailable(x, y int) bool {
	scene.mu.RLock()
	defer scene.mu.RUnlock()
	return x >= 0 && y >= 0 && float64(x) < scene.width && float64(y) < scene.height
}

// ColorAt returns the top-most color at a stage coordinate, or
// model.Transparent outside the stage.
func (scene *Scene) ColorAt(x, y float64) model.Color {
	scene.mu.RLock()
	defer scene.mu.RUnlock()

	if index, ok := scene.swatchAtLocked(x, y); ok {
		return scene.colors[index]
	}
	region := scene.regionLocked()
	if !region.Empty() && region.Contains(x, y) {
		return scene.config.RegionColor
	}
	stage := model.Rect{Width: scene.width, Height: scene.height}
	if !stage.Empty() && stage.Contains(x, y) {
		return scene.config.Background
	}
	return model.Transparent
}

// Swatches returns the current swatch layout.
func (scene *Scene) Swatches() []Swatch {
	scene.mu.RLock()
	defer scene.mu.RUnlock()
	swatches := make([]Swatch, len(scene.colors))
	for index := range scene.colors {
		swatches[index] = Swatch{
			Bounds: scene.swatchBoundsLocked(index),
			Color:  scene.colors[index],
		}
	}
	return swatches
}

// SwatchAt returns the index of the top-most swatch under a point.
func (scene *Scene) SwatchAt(x, y float64) (int, bool) {
	scene.mu.RLock()
	defer scene.mu.RUnlock()
	return scene.swatchAtLocked(x, y)
}

// SetColor assigns a color to a swatch.
func (scene *Scene) SetColor(index int, value model.Color) error {
	scene.mu.Lock()
	if index < 0 || index >= len(scene.colors) {
		scene.mu.Unlock()
		return fmt.Errorf("set color: %w: %d", ErrNoSwatch, index)
	}
	scene.colors[index] = value
	handlers := append([]func(){}, scene.onChange...)
	scene.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
	return nil
}

// Recolor assigns a random color that differs from the current one.
func (scene *Scene) Recolor(index int) (model.Color, error) {
	scene.mu.Lock()
	if index < 0 || index >= len(scene.colors) {
		scene.mu.Unlock()
		return model.Transparent, fmt.Errorf("recolor: %w: %d", ErrNoSwatch, index)
	}
	current := scene.colors[index]
	next := current
	for next == current {
		next = randomColor(scene.rng)
	}
	scene.mu.Unlock()

	return next, scene.SetColor(index, next)
}

// Reset restores the configured swatch colors and notifies once.
func (scene *Scene) Reset() {
	scene.mu.Lock()
	for index, swatch := range scene.config.Swatches {
		scene.colors[index] = swatch.Color
	}
	handlers := append([]func(){}, scene.onChange...)
	scene.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}

func (scene *Scene) regionLocked() model.Rect {
	padding := scene.config.Padding
	return model.Rect{
		Left:   padding,
		Top:    padding,
		Width:  scene.width - 2*padding,
		Height: scene.height - 2*padding,
	}
}

func (scene *Scene) swatchBoundsLocked(index int) model.Rect {
	region := scene.regionLocked()
	anchor := scene.config.Swatches[index].Anchor
	size := scene.config.SwatchSize
	centerX := region.Left + anchor.X*region.Width
	centerY := region.Top + anchor.Y*region.Height
	return model.Rect{
		Left:   centerX - size/2,
		Top:    centerY - size/2,
		Width:  size,
		Height: size,
	}
}

func (scene *Scene) swatchAtLocked(x, y float64) (int, bool) {
	if scene.regionLocked().Empty() {
		return 0, false
	}
	for index := len(scene.colors) - 1; index >= 0; index-- {
		if scene.swatchBoundsLocked(index).Contains(x, y) {
			return index, true
		}
	}
	return 0, false
}

func randomColor(rng *rand.Rand) model.Color {
	hue := rng.Float64() * 360
	saturation := 0.45 + rng.Float64()*0.55
	value := 0.55 + rng.Float64()*0.45
	r, g, b := colorful.Hsv(hue, saturation, value).Clamped().RGB255()
	return model.RGB(r, g, b)
}

// Describe formats a color for display, as a hex code or "transparent".
func Describe(value model.Color) string {
	if value.IsTransparent() {
		return "transparent"
	}
	converted, ok := colorful.MakeColor(value.NRGBA())
	if !ok {
		return value.String()
	}
	return converted.Hex()
}
