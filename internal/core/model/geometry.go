package model

import (
	"fmt"
	"image/color"
)

// Point is an integer coordinate in stage space.
type Point struct {
	X int
	Y int
}

// Rect is the bounding box of a region in stage space.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge.
func (rect Rect) Right() float64 {
	return rect.Left + rect.Width
}

// Bottom returns the bottom edge.
func (rect Rect) Bottom() float64 {
	return rect.Top + rect.Height
}

// Empty reports whether the rect has no area.
func (rect Rect) Empty() bool {
	return rect.Width <= 0 || rect.Height <= 0
}

// Contains reports whether the point lies inside the rect, edges included.
func (rect Rect) Contains(x, y float64) bool {
	return x >= rect.Left && x <= rect.Right() && y >= rect.Top && y <= rect.Bottom()
}

// ClickEvent is a single simulated click. It has no identity beyond the
// instant it is emitted.
type ClickEvent struct {
	X float64
	Y float64
}

// Color is a rendered background color as read by a probe.
type Color color.NRGBA

// Transparent is returned by probes when nothing is rendered at a coordinate.
var Transparent = Color{}

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// NRGBA converts to the image/color type used by renderers.
func (value Color) NRGBA() color.NRGBA {
	return color.NRGBA(value)
}

// IsTransparent reports whether the color is fully transparent.
func (value Color) IsTransparent() bool {
	return value.A == 0
}

func (value Color) String() string {
	if value.A == 0xff {
		return fmt.Sprintf("rgb(%d, %d, %d)", value.R, value.G, value.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", value.R, value.G, value.B, float64(value.A)/255)
}
