package main

import (
	"clicksim/internal/config"
	"clicksim/internal/observability"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries state shared by all commands.
type cli struct {
	viper   *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	state := &cli{viper: viper.New()}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Desktop click simulator",
		Long:          "clicksim simulates pointer clicks inside its own window, on a fixed interval or when a watched pixel changes color. It never moves the real cursor.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.viper, state.cfgFile)
			if err != nil {
				observability.InitializeLogger(config.NewDefaultConfig().Logger)
				return err
			}
			state.cfg = cfg
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Configuration loaded",
				zap.String("config_file", state.viper.ConfigFileUsed()),
				zap.String("command", cmd.Name()))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(state.cfg)
		},
	}
	root.PersistentFlags().StringVarP(&state.cfgFile, "config", "c", "", "config file (default is ./clicksim.yaml or ~/.clicksim/clicksim.yaml)")

	root.AddCommand(newRunCmd(state), newConfigCmd(state))
	return root
}
