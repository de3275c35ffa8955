package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"ticker-drift-alerts/internal/logging"
	"ticker-drift-alerts/internal/market"
)

// Config materialises application configuration.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Logging logging.Config `mapstructure:"logging"`
	Monitor MonitorConfig  `mapstructure:"monitor"`
	Binance BinanceConfig  `mapstructure:"binance"`
	Report  ReportConfig   `mapstructure:"report"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// MonitorConfig governs what is watched and when an alert fires.
type MonitorConfig struct {
	Symbol       string        `mapstructure:"symbol"`
	Symbols      []string      `mapstructure:"symbols"`
	ThresholdPct float64       `mapstructure:"threshold_pct"`
	Window       time.Duration `mapstructure:"window"`
}

// BinanceConfig captures ticker endpoint connectivity.
type BinanceConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Retry          RetryConfig   `mapstructure:"retry"`
}

// RetryConfig tunes the retrying transport.
type RetryConfig struct {
	Attempts    int           `mapstructure:"attempts"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	BackoffMax  time.Duration `mapstructure:"backoff_max"`
}

// ReportConfig selects the text sink for sample and alert reports.
type ReportConfig struct {
	Sink string `mapstructure:"sink"`
}

// MetricsConfig exposes Prometheus collectors.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Namespace  string `mapstructure:"namespace"`
}

const (
	SinkConsole = "console"
	SinkLog     = "log"
)

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DRIFTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "driftwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("monitor.symbol", market.DefaultSymbol)
	v.SetDefault("monitor.symbols", market.DefaultSymbols)
	v.SetDefault("monitor.threshold_pct", 1.0)
	v.SetDefault("monitor.window", "1h")

	v.SetDefault("binance.base_url", market.DefaultBaseURL)
	v.SetDefault("binance.request_timeout", "10s")
	v.SetDefault("binance.user_agent", "driftwatch/1.0")
	v.SetDefault("binance.retry.attempts", 5)
	v.SetDefault("binance.retry.backoff_base", "300ms")
	v.SetDefault("binance.retry.backoff_max", "5s")

	v.SetDefault("report.sink", SinkConsole)

	v.SetDefault("metrics.listen_addr", "")
	v.SetDefault("metrics.namespace", "driftwatch")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Monitor.ThresholdPct < 0 {
		return fmt.Errorf("monitor.threshold_pct cannot be negative")
	}
	if c.Monitor.Window <= 0 {
		return fmt.Errorf("monitor.window must be greater than zero")
	}
	if c.Binance.Retry.Attempts <= 0 {
		return fmt.Errorf("binance.retry.attempts must be greater than zero")
	}
	if c.Binance.Retry.BackoffBase < 0 {
		return fmt.Errorf("binance.retry.backoff_base cannot be negative")
	}
	if c.Binance.RequestTimeout < 0 {
		return fmt.Errorf("binance.request_timeout cannot be negative")
	}
	switch strings.ToLower(c.Report.Sink) {
	case "", SinkConsole, SinkLog:
	default:
		return fmt.Errorf("report.sink must be %q or %q", SinkConsole, SinkLog)
	}
	return nil
}
