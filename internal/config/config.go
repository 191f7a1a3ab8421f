package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/pulse/internal/search"
)

// Config represents the complete pulse configuration
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

// EngineConfig controls the aggregation engine
type EngineConfig struct {
	// WindowMs is the quiescence window in milliseconds (default: 200)
	WindowMs int `mapstructure:"window_ms" yaml:"window_ms"`
}

// SearchConfig controls the search transport and retry pacing
type SearchConfig struct {
	// Transport selects the search backend
	// Options: "memory", "http"
	Transport string `mapstructure:"transport" yaml:"transport"`
	// Endpoint is the base URL of the remote index (http transport only)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// TimeoutMs bounds a single HTTP search request
	TimeoutMs int `mapstructure:"timeout_ms" yaml:"timeout_ms"`
	// Corpus is a YAML corpus file for the memory index; empty uses the built-in sample
	Corpus string `mapstructure:"corpus" yaml:"corpus"`
	// FailureRate injects failures into the memory index (0 disables, must be below 1)
	FailureRate float64 `mapstructure:"failure_rate" yaml:"failure_rate"`
	// LatencyMs delays every memory index search
	LatencyMs int `mapstructure:"latency_ms" yaml:"latency_ms"`
	// Retry controls the pause between failed invocations
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig controls the pause between failed search invocations.
// Retries are unbounded; only a new search term stops them.
type RetryConfig struct {
	// Strategy is the pacing strategy
	// Options: "immediate", "constant", "exponential"
	Strategy      string `mapstructure:"strategy" yaml:"strategy"`
	IntervalMs    int    `mapstructure:"interval_ms" yaml:"interval_ms"`
	MaxIntervalMs int    `mapstructure:"max_interval_ms" yaml:"max_interval_ms"`
}

// SourcesConfig configures the two counter producers
type SourcesConfig struct {
	Views    SourceConfig `mapstructure:"views" yaml:"views"`
	Comments SourceConfig `mapstructure:"comments" yaml:"comments"`
}

// SourceConfig configures one counter producer
type SourceConfig struct {
	// Kind selects the producer
	// Options: "ticker", "file", "redis", "none"
	Kind string `mapstructure:"kind" yaml:"kind"`
	// IntervalMs is the tick period (ticker) or poll period (redis)
	IntervalMs int `mapstructure:"interval_ms" yaml:"interval_ms"`
	// Start and Step define the ticker sequence
	Start int64 `mapstructure:"start" yaml:"start"`
	Step  int64 `mapstructure:"step" yaml:"step"`
	// Path is the watched file (file kind)
	Path string `mapstructure:"path" yaml:"path"`
	// Key is the polled Redis key (redis kind)
	Key string `mapstructure:"key" yaml:"key"`
}

// RedisConfig holds connection parameters for redis sources
type RedisConfig struct {
	Addrs    []string `mapstructure:"addrs" yaml:"addrs"`
	Username string   `mapstructure:"username" yaml:"username"`
	Password string   `mapstructure:"password" yaml:"password"`
	DB       int      `mapstructure:"db" yaml:"db"`
}

// ServerConfig controls the search-server command
type ServerConfig struct {
	// Addr is the listen address (default: ":8088")
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the minimum log level
	// Options: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for pulse.log; empty logs to stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB rotates pulse.log once it reaches this size; 0 disables rotation
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated log files kept (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// MetricsConfig controls the Prometheus endpoint of the watch command
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables it
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is the color theme (default: "default")
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			WindowMs: 200,
		},
		Search: SearchConfig{
			Transport: "memory",
			Endpoint:  "http://127.0.0.1:8088",
			TimeoutMs: 5000,
			Corpus:    "", // Empty means the built-in sample corpus
			Retry: RetryConfig{
				Strategy:      search.StrategyImmediate,
				IntervalMs:    250,
				MaxIntervalMs: 5000,
			},
		},
		Sources: SourcesConfig{
			Views: SourceConfig{
				Kind:       "ticker",
				IntervalMs: 1000,
				Start:      0,
				Step:       3,
			},
			Comments: SourceConfig{
				Kind:       "ticker",
				IntervalMs: 2500,
				Start:      0,
				Step:       1,
			},
		},
		Redis: RedisConfig{
			Addrs: []string{},
		},
		Server: ServerConfig{
			Addr: ":8088",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Theme: "default",
		},
	}
}

// Window returns the engine quiescence window as a time.Duration
func (c *EngineConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// Timeout returns the HTTP request timeout as a time.Duration
func (c *SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Latency returns the injected memory index latency as a time.Duration
func (c *SearchConfig) Latency() time.Duration {
	return time.Duration(c.LatencyMs) * time.Millisecond
}

// Policy converts the retry settings into a search.RetryPolicy
func (c *RetryConfig) Policy() search.RetryPolicy {
	return search.RetryPolicy{
		Strategy:    c.Strategy,
		Interval:    time.Duration(c.IntervalMs) * time.Millisecond,
		MaxInterval: time.Duration(c.MaxIntervalMs) * time.Millisecond,
	}
}

// Interval returns the tick or poll period as a time.Duration
func (c *SourceConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("engine.window_ms", defaults.Engine.WindowMs)

	viper.SetDefault("search.transport", defaults.Search.Transport)
	viper.SetDefault("search.endpoint", defaults.Search.Endpoint)
	viper.SetDefault("search.timeout_ms", defaults.Search.TimeoutMs)
	viper.SetDefault("search.corpus", defaults.Search.Corpus)
	viper.SetDefault("search.failure_rate", defaults.Search.FailureRate)
	viper.SetDefault("search.latency_ms", defaults.Search.LatencyMs)
	viper.SetDefault("search.retry.strategy", defaults.Search.Retry.Strategy)
	viper.SetDefault("search.retry.interval_ms", defaults.Search.Retry.IntervalMs)
	viper.SetDefault("search.retry.max_interval_ms", defaults.Search.Retry.MaxIntervalMs)

	setSourceDefaults("sources.views", defaults.Sources.Views)
	setSourceDefaults("sources.comments", defaults.Sources.Comments)

	viper.SetDefault("redis.addrs", defaults.Redis.Addrs)
	viper.SetDefault("redis.username", defaults.Redis.Username)
	viper.SetDefault("redis.password", defaults.Redis.Password)
	viper.SetDefault("redis.db", defaults.Redis.DB)

	viper.SetDefault("server.addr", defaults.Server.Addr)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("metrics.addr", defaults.Metrics.Addr)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
}

func setSourceDefaults(prefix string, s SourceConfig) {
	viper.SetDefault(prefix+".kind", s.Kind)
	viper.SetDefault(prefix+".interval_ms", s.IntervalMs)
	viper.SetDefault(prefix+".start", s.Start)
	viper.SetDefault(prefix+".step", s.Step)
	viper.SetDefault(prefix+".path", s.Path)
	viper.SetDefault(prefix+".key", s.Key)
}

// Load reads the configuration from viper and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if it
// cannot be loaded
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pulse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pulse"
	}
	return filepath.Join(home, ".config", "pulse")
}

// DefaultLogDir is where the interactive dashboard writes pulse.log when
// logging.dir is not set.
func DefaultLogDir() string {
	return filepath.Join(ConfigDir(), "logs")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
