package controls

import (
	"fmt"
	"strconv"
	"time"

	"clicksim/internal/core/model"
	"clicksim/internal/surface"
	"clicksim/internal/ui/stats"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	modeIntervalLabel = "Time Interval"
	modeColorLabel    = "Color Change"

	pickLabel       = "Pick Pixel to Monitor"
	cancelPickLabel = "Cancel Picking"
	startLabel      = "Start Clicking"
	stopLabel       = "Stop Clicking"
)

// Callbacks defines panel action handlers.
type Callbacks struct {
	OnStart func(model.Settings)
	OnStop  func()
	OnReset func()
	OnPick  func(picking bool)
}

// Panel is the control surface next to the stage.
type Panel struct {
	settings  model.Settings
	callbacks Callbacks
	running   bool
	picking   bool

	content      fyne.CanvasObject
	mode         *widget.RadioGroup
	intervalBox  *fyne.Container
	interval     *widget.Entry
	watchBox     *fyne.Container
	pick         *widget.Button
	monitorLabel *widget.Label
	colorLabel   *widget.Label
	colorChip    *canvas.Rectangle
	monitorInfo  *fyne.Container
	limited      *widget.Check
	limit        *widget.Entry
	startStop    *widget.Button
	reset        *widget.Button

	clicksValue   *widget.Label
	elapsedValue  *widget.Label
	rateValue     *widget.Label
	intervalValue *widget.Label
}

// New builds the panel for the given initial settings.
func New(settings model.Settings, callbacks Callbacks) *Panel {
	panel := &Panel{
		settings:  settings.Clone(),
		callbacks: callbacks,
	}

	panel.interval = widget.NewEntry()
	panel.interval.SetText(fmt.Sprintf("%d", settings.Interval.Milliseconds()))
	panel.interval.OnChanged = func(string) { panel.readInterval() }
	panel.intervalBox = container.NewVBox(
		widget.NewLabel("Click Interval (ms)"),
		panel.interval,
	)

	panel.pick = widget.NewButtonWithIcon(pickLabel, theme.SearchIcon(), panel.togglePicking)
	panel.monitorLabel = widget.NewLabel("")
	panel.colorLabel = widget.NewLabel("")
	panel.colorChip = canvas.NewRectangle(model.Transparent.NRGBA())
	panel.colorChip.SetMinSize(fyne.NewSize(16, 16))
	panel.colorChip.CornerRadius = 8
	panel.monitorInfo = container.NewVBox(
		panel.monitorLabel,
		container.NewHBox(widget.NewLabel("Initial Color:"), panel.colorChip, panel.colorLabel),
	)
	panel.monitorInfo.Hide()
	panel.watchBox = container.NewVBox(panel.pick, panel.monitorInfo)

	panel.mode = widget.NewRadioGroup([]string{modeIntervalLabel, modeColorLabel}, panel.handleMode)
	panel.mode.Horizontal = true
	panel.mode.Required = true

	panel.limited = widget.NewCheck("Limit Clicks", nil)
	panel.limited.SetChecked(settings.Limited)
	panel.limited.OnChanged = func(checked bool) {
		panel.settings.Limited = checked
		panel.refreshEnabled()
	}
	panel.limit = widget.NewEntry()
	panel.limit.SetText(fmt.Sprintf("%d", settings.ClickLimit))
	panel.limit.OnChanged = func(string) { panel.readLimit() }

	panel.startStop = widget.NewButtonWithIcon(startLabel, theme.MediaPlayIcon(), panel.handleStartStop)
	panel.startStop.Importance = widget.HighImportance
	panel.reset = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() {
		if panel.callbacks.OnReset != nil {
			panel.callbacks.OnReset()
		}
	})

	panel.clicksValue = widget.NewLabel("")
	panel.elapsedValue = widget.NewLabel("")
	panel.rateValue = widget.NewLabel("")
	panel.intervalValue = widget.NewLabel("")

	statsGrid := container.NewGridWithColumns(2,
		statCard("Clicks", panel.clicksValue),
		statCard("Elapsed Time (s)", panel.elapsedValue),
		statCard("Clicks / Sec", panel.rateValue),
		statCard("Set Interval (ms)", panel.intervalValue),
	)

	panel.content = container.NewVBox(
		widget.NewLabelWithStyle("Auto Clicker", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Desktop Click Simulator"),
		widget.NewLabelWithStyle("Trigger Mode", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		panel.mode,
		panel.intervalBox,
		panel.watchBox,
		container.NewHBox(widget.NewLabel("Number of Clicks"), panel.limited),
		panel.limit,
		panel.startStop,
		panel.reset,
		widget.NewLabelWithStyle("Live Statistics", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		statsGrid,
	)

	if settings.Mode == model.ModeColorWatch {
		panel.mode.SetSelected(modeColorLabel)
	} else {
		panel.mode.SetSelected(modeIntervalLabel)
	}
	if settings.MonitoringPoint != nil {
		panel.showMonitoring(*settings.MonitoringPoint, nil)
	}
	panel.SetStats(stats.Stats{Interval: settings.Interval})
	panel.refreshEnabled()

	return panel
}

// Content returns the panel's canvas object.
func (panel *Panel) Content() fyne.CanvasObject {
	return panel.content
}

// Settings returns the settings the panel currently describes.
func (panel *Panel) Settings() model.Settings {
	return panel.settings.Clone()
}

// CanStart reports whether the current settings may start a run.
func (panel *Panel) CanStart() bool {
	return panel.settings.Mode == model.ModeInterval || panel.settings.MonitoringPoint != nil
}

// SetRunning updates the panel for a started or stopped run.
func (panel *Panel) SetRunning(running bool) {
	panel.running = running
	if running {
		panel.startStop.SetText(stopLabel)
		panel.startStop.SetIcon(theme.MediaPauseIcon())
		panel.startStop.Importance = widget.DangerImportance
		if panel.picking {
			panel.SetPicking(false)
		}
	} else {
		panel.startStop.SetText(startLabel)
		panel.startStop.SetIcon(theme.MediaPlayIcon())
		panel.startStop.Importance = widget.HighImportance
	}
	panel.startStop.Refresh()
	panel.refreshEnabled()
}

// Running reports whether the panel shows a running run.
func (panel *Panel) Running() bool {
	return panel.running
}

// SetStats refreshes the live statistics.
func (panel *Panel) SetStats(value stats.Stats) {
	lines := stats.Format(value)
	panel.clicksValue.SetText(lines.Clicks)
	panel.elapsedValue.SetText(lines.Elapsed)
	panel.rateValue.SetText(lines.Rate)
	panel.intervalValue.SetText(lines.Interval)
}

// StatsText returns the formatted statistics currently shown.
func (panel *Panel) StatsText() stats.Lines {
	return stats.Lines{
		Clicks:   panel.clicksValue.Text,
		Elapsed:  panel.elapsedValue.Text,
		Rate:     panel.rateValue.Text,
		Interval: panel.intervalValue.Text,
	}
}

// SetPicking updates the pick button without notifying the callback.
func (panel *Panel) SetPicking(picking bool) {
	panel.picking = picking
	if picking {
		panel.pick.SetText(cancelPickLabel)
	} else {
		panel.pick.SetText(pickLabel)
	}
}

// SetMonitoring records the monitoring point and the color sampled there.
func (panel *Panel) SetMonitoring(point model.Point, sampled model.Color) {
	panel.SetPicking(false)
	panel.showMonitoring(point, &sampled)
	panel.refreshEnabled()
}

// ClearMonitoring forgets the monitoring point.
func (panel *Panel) ClearMonitoring() {
	panel.settings.MonitoringPoint = nil
	panel.monitorInfo.Hide()
	panel.refreshEnabled()
}

func (panel *Panel) showMonitoring(point model.Point, sampled *model.Color) {
	panel.settings = panel.settings.WithMonitoringPoint(&point)
	panel.monitorLabel.SetText(fmt.Sprintf("Monitoring at: (%d, %d)", point.X, point.Y))
	if sampled != nil {
		panel.colorLabel.SetText(surface.Describe(*sampled))
		panel.colorChip.FillColor = sampled.NRGBA()
		panel.colorChip.Refresh()
	}
	panel.monitorInfo.Show()
}

func (panel *Panel) handleMode(selected string) {
	if selected == modeColorLabel {
		panel.settings.Mode = model.ModeColorWatch
		panel.intervalBox.Hide()
		panel.watchBox.Show()
	} else {
		panel.settings.Mode = model.ModeInterval
		panel.watchBox.Hide()
		panel.intervalBox.Show()
		if panel.picking {
			panel.togglePicking()
		}
	}
	panel.refreshEnabled()
}

func (panel *Panel) togglePicking() {
	panel.SetPicking(!panel.picking)
	if panel.callbacks.OnPick != nil {
		panel.callbacks.OnPick(panel.picking)
	}
}

func (panel *Panel) handleStartStop() {
	if panel.running {
		if panel.callbacks.OnStop != nil {
			panel.callbacks.OnStop()
		}
		return
	}
	panel.readInterval()
	panel.readLimit()
	if !panel.CanStart() {
		return
	}
	if panel.callbacks.OnStart != nil {
		panel.callbacks.OnStart(panel.Settings())
	}
}

func (panel *Panel) readInterval() {
	if milliseconds, ok := parsePositiveInt(panel.interval.Text); ok {
		interval := time.Duration(milliseconds) * time.Millisecond
		if interval < model.MinInterval {
			interval = model.MinInterval
		}
		panel.settings.Interval = interval
		panel.intervalValue.SetText(stats.FormatInterval(interval))
	}
}

func (panel *Panel) readLimit() {
	if limit, ok := parsePositiveInt(panel.limit.Text); ok {
		panel.settings.ClickLimit = limit
	}
}

func (panel *Panel) refreshEnabled() {
	setEnabled(panel.mode, !panel.running)
	setEnabled(panel.interval, !panel.running)
	setEnabled(panel.pick, !panel.running)
	setEnabled(panel.limited, !panel.running)
	setEnabled(panel.limit, !panel.running && panel.settings.Limited)
	setEnabled(panel.reset, !panel.running)
	setEnabled(panel.startStop, panel.running || panel.CanStart())
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(target disableable, enabled bool) {
	if enabled {
		target.Enable()
		return
	}
	target.Disable()
}

func statCard(label string, value *widget.Label) fyne.CanvasObject {
	value.TextStyle = fyne.TextStyle{Bold: true}
	return container.NewVBox(widget.NewLabel(label), value)
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
