package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"clicksim/internal/core/model"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. CLICKSIM_CLICKER_INTERVAL.
const EnvPrefix = "CLICKSIM"

// Config is the effective application configuration. It is read-only: the
// application never writes it back.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Clicker ClickerConfig `mapstructure:"clicker" yaml:"clicker"`
	Probe   ProbeConfig   `mapstructure:"probe" yaml:"probe"`
	Runner  RunnerConfig  `mapstructure:"runner" yaml:"runner"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// ClickerConfig holds the initial click settings and scheduler tuning.
type ClickerConfig struct {
	Mode        string        `mapstructure:"mode" yaml:"mode"`
	Interval    time.Duration `mapstructure:"interval" yaml:"interval"`
	ClickLimit  int           `mapstructure:"click_limit" yaml:"click_limit"`
	Limited     bool          `mapstructure:"limited" yaml:"limited"`
	Monitor     MonitorConfig `mapstructure:"monitor" yaml:"monitor"`
	ElapsedTick time.Duration `mapstructure:"elapsed_tick" yaml:"elapsed_tick"`
}

// MonitorConfig optionally preselects the color-watch monitoring point.
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	X       int  `mapstructure:"x" yaml:"x"`
	Y       int  `mapstructure:"y" yaml:"y"`
}

// ProbeConfig tunes color sampling.
type ProbeConfig struct {
	FrameRate float64 `mapstructure:"frame_rate" yaml:"frame_rate"`
}

// RunnerConfig drives the headless runner.
type RunnerConfig struct {
	Duration    time.Duration `mapstructure:"duration" yaml:"duration"`
	Width       float64       `mapstructure:"width" yaml:"width"`
	Height      float64       `mapstructure:"height" yaml:"height"`
	CycleSwatch int           `mapstructure:"cycle_swatch" yaml:"cycle_swatch"`
	CyclePeriod time.Duration `mapstructure:"cycle_period" yaml:"cycle_period"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "clicksim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	v.SetDefault("clicker.mode", string(model.ModeInterval))
	v.SetDefault("clicker.interval", "1s")
	v.SetDefault("clicker.click_limit", 10)
	v.SetDefault("clicker.limited", true)
	v.SetDefault("clicker.monitor.enabled", false)
	v.SetDefault("clicker.monitor.x", 0)
	v.SetDefault("clicker.monitor.y", 0)
	v.SetDefault("clicker.elapsed_tick", "100ms")

	v.SetDefault("probe.frame_rate", 60.0)

	v.SetDefault("runner.duration", "0s")
	v.SetDefault("runner.width", 432.0)
	v.SetDefault("runner.height", 332.0)
	v.SetDefault("runner.cycle_swatch", 0)
	v.SetDefault("runner.cycle_period", "750ms")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Load reads defaults, the optional config file and CLICKSIM_ environment
// overrides into v. An empty path looks for clicksim.yaml in the working
// directory, then in ~/.clicksim, and tolerates its absence.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".clicksim"))
		}
		v.SetConfigName("clicksim")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper decodes and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Logger.LogFile != "" {
		expanded, err := homedir.Expand(cfg.Logger.LogFile)
		if err != nil {
			return nil, fmt.Errorf("invalid logger.log_file: %w", err)
		}
		cfg.Logger.LogFile = expanded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Render prints the effective settings of v as YAML.
func Render(v *viper.Viper) ([]byte, error) {
	out, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return out, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if _, err := c.Clicker.Settings(); err != nil {
		return fmt.Errorf("clicker: %w", err)
	}
	if c.Clicker.ElapsedTick <= 0 {
		return fmt.Errorf("clicker.elapsed_tick must be positive")
	}
	if c.Probe.FrameRate <= 0 {
		return fmt.Errorf("probe.frame_rate must be positive")
	}
	if c.Runner.Duration < 0 {
		return fmt.Errorf("runner.duration must not be negative")
	}
	if c.Runner.Width <= 0 || c.Runner.Height <= 0 {
		return fmt.Errorf("runner.width and runner.height must be positive")
	}
	return nil
}

// Settings converts the clicker section into run settings. The monitoring
// point is optional here; the scheduler rejects color watch without one.
func (c ClickerConfig) Settings() (model.Settings, error) {
	mode, err := model.ParseMode(c.Mode)
	if err != nil {
		return model.Settings{}, err
	}
	interval := c.Interval
	if interval < model.MinInterval {
		return model.Settings{}, fmt.Errorf("%w: %s is below %s", model.ErrInvalidInterval, interval, model.MinInterval)
	}
	if c.Limited && c.ClickLimit <= 0 {
		return model.Settings{}, model.ErrInvalidClickLimit
	}

	settings := model.Settings{
		Interval:   interval,
		ClickLimit: c.ClickLimit,
		Limited:    c.Limited,
		Mode:       mode,
	}
	if c.Monitor.Enabled {
		settings.MonitoringPoint = &model.Point{X: c.Monitor.X, Y: c.Monitor.Y}
	}
	return settings, nil
}
