package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clicksim/internal/observability"
	"clicksim/internal/runner"
	"clicksim/internal/ui/stats"

	"github.com/spf13/cobra"
)

func newRunCmd(state *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the click scheduler headless against an off-screen stage",
		Long: `Run the click scheduler without a window. Interval mode clicks inside the
off-screen target region; color mode watches a swatch that is recolored on a
fixed period. The run ends at the click limit, after --duration, or on Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := state.cfg
			result, err := runner.New(cfg, observability.Component("runner")).Run(ctx)
			if err != nil {
				return err
			}

			lines := stats.Format(stats.Stats{
				ClickCount: result.ClickCount,
				Elapsed:    result.Elapsed,
				Interval:   cfg.Clicker.Interval,
			})
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s, stopped: %s\n", result.RunID, lines.Summary(), result.Reason)
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("mode", "interval", "trigger mode: interval or color_watch")
	flags.Duration("interval", time.Second, "click interval in interval mode")
	flags.Int("limit", 10, "number of clicks before stopping")
	flags.Bool("limited", true, "stop after --limit clicks")
	flags.Duration("duration", 0, "stop after this long (0 runs until the limit or Ctrl+C)")
	flags.Int("swatch", 0, "swatch recolored and watched in color mode")
	flags.Duration("cycle", 750*time.Millisecond, "recolor period of the watched swatch (0 disables)")
	flags.Float64("frame-rate", 60, "color sampling rate in frames per second")

	bindings := map[string]string{
		"clicker.mode":        "mode",
		"clicker.interval":    "interval",
		"clicker.click_limit": "limit",
		"clicker.limited":     "limited",
		"runner.duration":     "duration",
		"runner.cycle_swatch": "swatch",
		"runner.cycle_period": "cycle",
		"probe.frame_rate":    "frame-rate",
	}
	for key, name := range bindings {
		_ = state.viper.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}
