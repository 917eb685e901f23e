package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  Lines
	}{
		{
			name:  "idle",
			stats: Stats{Interval: time.Second},
			want:  Lines{Clicks: "0", Elapsed: "0.00", Rate: "0.00", Interval: "1000"},
		},
		{
			name:  "running",
			stats: Stats{ClickCount: 7, Elapsed: 3500 * time.Millisecond, Interval: 500 * time.Millisecond},
			want:  Lines{Clicks: "7", Elapsed: "3.50", Rate: "2.00", Interval: "500"},
		},
		{
			name:  "clicks before first sample",
			stats: Stats{ClickCount: 1, Interval: 10 * time.Millisecond},
			want:  Lines{Clicks: "1", Elapsed: "0.00", Rate: "0.00", Interval: "10"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.stats))
		})
	}
}

func TestSummary(t *testing.T) {
	lines := Format(Stats{ClickCount: 3, Elapsed: 1500 * time.Millisecond})
	assert.Equal(t, "3 clicks in 1.50 s (2.00/s)", lines.Summary())
}

func TestFormatElapsedClampsNegative(t *testing.T) {
	assert.Equal(t, "0.00", FormatElapsed(-time.Second))
	assert.Equal(t, "12.34", FormatElapsed(12344*time.Millisecond))
}
