package stats

import (
	"fmt"
	"time"
)

// Stats is the live statistics of a click run.
type Stats struct {
	ClickCount int
	Elapsed    time.Duration
	Interval   time.Duration
}

// Lines holds the formatted statistics shown in the panel.
type Lines struct {
	Clicks   string
	Elapsed  string
	Rate     string
	Interval string
}

// Format renders every statistic.
func Format(stats Stats) Lines {
	return Lines{
		Clicks:   fmt.Sprintf("%d", stats.ClickCount),
		Elapsed:  FormatElapsed(stats.Elapsed),
		Rate:     fmt.Sprintf("%.2f", ClicksPerSecond(stats.ClickCount, stats.Elapsed)),
		Interval: FormatInterval(stats.Interval),
	}
}

// Summary is a one-line description for the tray and logs.
func (lines Lines) Summary() string {
	return fmt.Sprintf("%s clicks in %s s (%s/s)", lines.Clicks, lines.Elapsed, lines.Rate)
}

// FormatElapsed renders seconds with two decimals.
func FormatElapsed(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("%.2f", elapsed.Seconds())
}

// FormatInterval renders whole milliseconds.
func FormatInterval(interval time.Duration) string {
	return fmt.Sprintf("%d", interval.Milliseconds())
}

// ClicksPerSecond returns zero until time has elapsed.
func ClicksPerSecond(count int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(count) / elapsed.Seconds()
}
