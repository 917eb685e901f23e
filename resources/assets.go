package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/lucasb-eyer/go-colorful"
)

const iconSize = 64

// IconVariant selects the tint of the application icon.
type IconVariant int

const (
	// IconIdle is used while no run is active.
	IconIdle IconVariant = iota
	// IconActive is used while clicks are being simulated.
	IconActive
)

var iconCache sync.Map

// Icon returns the application icon for a variant, rendered once and cached.
func Icon(variant IconVariant) (fyne.Resource, error) {
	if cached, ok := iconCache.Load(variant); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := renderIcon(tint(variant))
	if err != nil {
		return nil, fmt.Errorf("render icon %d: %w", variant, err)
	}
	resource := fyne.NewStaticResource(fmt.Sprintf("clicksim-%d.png", variant), data)
	actual, _ := iconCache.LoadOrStore(variant, resource)
	return actual.(fyne.Resource), nil
}

// MustIcon returns the icon or panics on error.
func MustIcon(variant IconVariant) fyne.Resource {
	resource, err := Icon(variant)
	if err != nil {
		panic(err)
	}
	return resource
}

func tint(variant IconVariant) colorful.Color {
	if variant == IconActive {
		// cyan-400
		return colorful.Color{R: 34.0 / 255, G: 211.0 / 255, B: 238.0 / 255}
	}
	return colorful.Color{R: 156.0 / 255, G: 163.0 / 255, B: 175.0 / 255}
}

// renderIcon draws a target ring with a crosshair on a dark disc.
func renderIcon(accent colorful.Color) ([]byte, error) {
	background := colorful.Color{R: 17.0 / 255, G: 24.0 / 255, B: 39.0 / 255}
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))

	center := float64(iconSize-1) / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			distance := dx*dx + dy*dy
			switch {
			case distance > 31*31:
				continue
			case distance >= 19*19 && distance <= 24*24:
				img.SetNRGBA(x, y, toNRGBA(accent))
			case (abs(dx) < 2 || abs(dy) < 2) && distance <= 28*28:
				img.SetNRGBA(x, y, toNRGBA(accent.BlendLab(background, 0.25)))
			default:
				img.SetNRGBA(x, y, toNRGBA(background))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(value colorful.Color) color.NRGBA {
	r, g, b := value.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}
	return value
}
