package stage

import (
	"context"
	"image/color"

	"clicksim/internal/core/model"
	"clicksim/internal/surface"
	"clicksim/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	minStageWidth  = float32(360)
	minStageHeight = float32(280)
	crosshairArm   = float32(10)
	crosshairRing  = float32(6)
)

var (
	rippleColor    = color.NRGBA{R: 250, G: 204, B: 21, A: 255}
	crosshairColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// PickHandler receives the point selected in picking mode and the color
// rendered there.
type PickHandler func(point model.Point, sampled model.Color)

type ripple struct {
	circle    *canvas.Circle
	animation *fyne.Animation
}

// Stage renders a surface.Scene, click ripples and the monitoring crosshair.
// All methods must be called on the fyne main goroutine.
type Stage struct {
	widget.BaseWidget

	scene      *surface.Scene
	engine     *animation.Engine
	config     animation.Config
	ripples    []*ripple
	picking    bool
	monitoring *model.Point
	crosshair  bool
	onPick     PickHandler
}

// New creates a stage bound to a scene.
func New(scene *surface.Scene, config animation.Config) *Stage {
	stage := &Stage{
		scene:     scene,
		config:    config,
		crosshair: true,
	}
	stage.engine = animation.New(config, func(visible bool) {
		fyne.Do(func() {
			stage.crosshair = visible
			stage.Refresh()
		})
	})
	scene.OnChange(func() {
		fyne.Do(stage.Refresh)
	})
	stage.ExtendBaseWidget(stage)
	return stage
}

// SetOnPick sets the picking handler.
func (stage *Stage) SetOnPick(handler PickHandler) {
	stage.onPick = handler
}

// SetPicking toggles picking mode. The next tap selects the monitoring point.
func (stage *Stage) SetPicking(picking bool) {
	stage.picking = picking
}

// Picking reports whether the next tap selects the monitoring point.
func (stage *Stage) Picking() bool {
	return stage.picking
}

// SetMonitoringPoint shows or hides the crosshair.
func (stage *Stage) SetMonitoringPoint(point *model.Point) {
	if point == nil {
		stage.monitoring = nil
	} else {
		copied := *point
		stage.monitoring = &copied
	}
	stage.Refresh()
}

// MonitoringPoint returns the selected point, if any.
func (stage *Stage) MonitoringPoint() *model.Point {
	if stage.monitoring == nil {
		return nil
	}
	copied := *stage.monitoring
	return &copied
}

// SetWatching blinks the crosshair while a color watch runs.
func (stage *Stage) SetWatching(watching bool) {
	if watching {
		stage.engine.StartPulse(context.Background())
		return
	}
	stage.engine.Stop()
}

// AddRipple spawns a click ripple centered at a stage coordinate. It fades
// out and removes itself after the ripple lifetime.
func (stage *Stage) AddRipple(x, y float32) {
	circle := canvas.NewCircle(color.Transparent)
	circle.StrokeWidth = 2
	item := &ripple{circle: circle}

	center := fyne.NewPos(x, y)
	item.animation = fyne.NewAnimation(stage.config.RippleLifetime, func(progress float32) {
		radius, alpha := stage.config.RippleFrame(progress)
		stroke := rippleColor
		stroke.A = alpha
		circle.StrokeColor = stroke
		circle.Position1 = fyne.NewPos(center.X-radius, center.Y-radius)
		circle.Position2 = fyne.NewPos(center.X+radius, center.Y+radius)
		circle.Refresh()
		if progress >= 1 {
			stage.removeRipple(item)
		}
	})
	item.animation.Curve = fyne.AnimationEaseOut
	item.animation.Tick(0)

	stage.ripples = append(stage.ripples, item)
	stage.Refresh()
	item.animation.Start()
}

// ClearRipples removes all ripples immediately.
func (stage *Stage) ClearRipples() {
	for _, item := range stage.ripples {
		item.animation.Stop()
	}
	stage.ripples = nil
	stage.Refresh()
}

// RippleCount returns the number of live ripples.
func (stage *Stage) RippleCount() int {
	return len(stage.ripples)
}

// Tapped picks the monitoring point in picking mode, otherwise recolors the
// tapped swatch.
func (stage *Stage) Tapped(event *fyne.PointEvent) {
	x := float64(event.Position.X)
	y := float64(event.Position.Y)

	if stage.picking {
		point := model.Point{X: int(event.Position.X), Y: int(event.Position.Y)}
		sampled := stage.scene.SampleColorAt(point.X, point.Y)
		stage.picking = false
		stage.SetMonitoringPoint(&point)
		if stage.onPick != nil {
			stage.onPick(point, sampled)
		}
		return
	}

	if index, ok := stage.scene.SwatchAt(x, y); ok {
		_, _ = stage.scene.Recolor(index)
		stage.Refresh()
	}
}

// Cursor shows a crosshair while picking.
func (stage *Stage) Cursor() desktop.Cursor {
	if stage.picking {
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

// CreateRenderer implements fyne.Widget.
func (stage *Stage) CreateRenderer() fyne.WidgetRenderer {
	config := stage.scene.Config()
	renderer := &stageRenderer{
		stage:      stage,
		background: canvas.NewRectangle(config.Background.NRGBA()),
		region:     canvas.NewRectangle(config.RegionColor.NRGBA()),
		crossH:     canvas.NewLine(crosshairColor),
		crossV:     canvas.NewLine(crosshairColor),
		ring:       canvas.NewCircle(color.Transparent),
	}
	renderer.region.CornerRadius = 8
	renderer.ring.StrokeColor = crosshairColor
	renderer.ring.StrokeWidth = 2
	for range config.Swatches {
		swatch := canvas.NewRectangle(color.Transparent)
		swatch.CornerRadius = 12
		renderer.swatches = append(renderer.swatches, swatch)
	}
	renderer.update()
	return renderer
}

func (stage *Stage) removeRipple(target *ripple) {
	for index, item := range stage.ripples {
		if item == target {
			stage.ripples = append(stage.ripples[:index], stage.ripples[index+1:]...)
			stage.Refresh()
			return
		}
	}
}

type stageRenderer struct {
	stage      *Stage
	background *canvas.Rectangle
	region     *canvas.Rectangle
	swatches   []*canvas.Rectangle
	crossH     *canvas.Line
	crossV     *canvas.Line
	ring       *canvas.Circle
	objects    []fyne.CanvasObject
}

func (renderer *stageRenderer) Layout(size fyne.Size) {
	renderer.stage.scene.Resize(float64(size.Width), float64(size.Height))
	renderer.update()
}

func (renderer *stageRenderer) MinSize() fyne.Size {
	return fyne.NewSize(minStageWidth, minStageHeight)
}

func (renderer *stageRenderer) Refresh() {
	renderer.update()
	for _, object := range renderer.objects {
		canvas.Refresh(object)
	}
}

func (renderer *stageRenderer) Objects() []fyne.CanvasObject {
	return renderer.objects
}

func (renderer *stageRenderer) Destroy() {
	renderer.stage.engine.Stop()
}

func (renderer *stageRenderer) update() {
	stage := renderer.stage
	width, height := stage.scene.Size()
	renderer.background.Move(fyne.NewPos(0, 0))
	renderer.background.Resize(fyne.NewSize(float32(width), float32(height)))

	region, ok := stage.scene.TargetRegion()
	renderer.region.Hidden = !ok
	moveToRect(renderer.region, region)

	for index, swatch := range stage.scene.Swatches() {
		if index >= len(renderer.swatches) {
			break
		}
		object := renderer.swatches[index]
		object.FillColor = swatch.Color.NRGBA()
		object.Hidden = !ok
		moveToRect(object, swatch.Bounds)
	}

	point := stage.monitoring
	showCrosshair := point != nil && stage.crosshair
	renderer.crossH.Hidden = !showCrosshair
	renderer.crossV.Hidden = !showCrosshair
	renderer.ring.Hidden = !showCrosshair
	if point != nil {
		x, y := float32(point.X), float32(point.Y)
		renderer.crossH.Position1 = fyne.NewPos(x-crosshairArm, y)
		renderer.crossH.Position2 = fyne.NewPos(x+crosshairArm, y)
		renderer.crossV.Position1 = fyne.NewPos(x, y-crosshairArm)
		renderer.crossV.Position2 = fyne.NewPos(x, y+crosshairArm)
		renderer.ring.Position1 = fyne.NewPos(x-crosshairRing, y-crosshairRing)
		renderer.ring.Position2 = fyne.NewPos(x+crosshairRing, y+crosshairRing)
	}

	objects := make([]fyne.CanvasObject, 0, 5+len(renderer.swatches)+len(stage.ripples))
	objects = append(objects, renderer.background, renderer.region)
	for _, swatch := range renderer.swatches {
		objects = append(objects, swatch)
	}
	for _, item := range stage.ripples {
		objects = append(objects, item.circle)
	}
	objects = append(objects, renderer.crossH, renderer.crossV, renderer.ring)
	renderer.objects = objects
}

func moveToRect(object fyne.CanvasObject, rect model.Rect) {
	object.Move(fyne.NewPos(float32(rect.Left), float32(rect.Top)))
	object.Resize(fyne.NewSize(float32(rect.Width), float32(rect.Height)))
}
