package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantFields []string
	}{
		{
			name:       "zero window",
			modify:     func(c *Config) { c.Engine.WindowMs = 0 },
			wantFields: []string{"engine.window_ms"},
		},
		{
			name:       "huge window",
			modify:     func(c *Config) { c.Engine.WindowMs = 120000 },
			wantFields: []string{"engine.window_ms"},
		},
		{
			name:       "unknown transport",
			modify:     func(c *Config) { c.Search.Transport = "grpc" },
			wantFields: []string{"search.transport"},
		},
		{
			name: "http transport with bad endpoint and timeout",
			modify: func(c *Config) {
				c.Search.Transport = TransportHTTP
				c.Search.Endpoint = "localhost:8088"
				c.Search.TimeoutMs = 0
			},
			wantFields: []string{"search.endpoint", "search.timeout_ms"},
		},
		{
			name: "memory transport ignores endpoint",
			modify: func(c *Config) {
				c.Search.Endpoint = "not a url"
			},
		},
		{
			name:       "failure rate of one",
			modify:     func(c *Config) { c.Search.FailureRate = 1 },
			wantFields: []string{"search.failure_rate"},
		},
		{
			name:       "negative latency",
			modify:     func(c *Config) { c.Search.LatencyMs = -5 },
			wantFields: []string{"search.latency_ms"},
		},
		{
			name:       "unknown retry strategy",
			modify:     func(c *Config) { c.Search.Retry.Strategy = "fibonacci" },
			wantFields: []string{"search.retry"},
		},
		{
			name: "constant retry without interval",
			modify: func(c *Config) {
				c.Search.Retry.Strategy = "constant"
				c.Search.Retry.IntervalMs = 0
			},
			wantFields: []string{"search.retry"},
		},
		{
			name:       "unknown source kind",
			modify:     func(c *Config) { c.Sources.Views.Kind = "kafka" },
			wantFields: []string{"sources.views.kind"},
		},
		{
			name:       "ticker without interval",
			modify:     func(c *Config) { c.Sources.Comments.IntervalMs = 0 },
			wantFields: []string{"sources.comments.interval_ms"},
		},
		{
			name:       "file without path",
			modify:     func(c *Config) { c.Sources.Views = SourceConfig{Kind: SourceFile} },
			wantFields: []string{"sources.views.path"},
		},
		{
			name: "redis without key or addrs",
			modify: func(c *Config) {
				c.Sources.Views = SourceConfig{Kind: SourceRedis, IntervalMs: 500}
			},
			wantFields: []string{"sources.views.key", "redis.addrs"},
		},
		{
			name: "redis fully configured",
			modify: func(c *Config) {
				c.Sources.Views = SourceConfig{Kind: SourceRedis, IntervalMs: 500, Key: "pulse:views"}
				c.Redis.Addrs = []string{"127.0.0.1:6379"}
			},
		},
		{
			name:   "none source",
			modify: func(c *Config) { c.Sources.Comments = SourceConfig{Kind: SourceNone} },
		},
		{
			name:       "server addr required",
			modify:     func(c *Config) { c.Server.Addr = "" },
			wantFields: []string{"server.addr"},
		},
		{
			name:       "bad metrics addr",
			modify:     func(c *Config) { c.Metrics.Addr = "9090" },
			wantFields: []string{"metrics.addr"},
		},
		{
			name:   "metrics addr",
			modify: func(c *Config) { c.Metrics.Addr = ":9090" },
		},
		{
			name:       "bad log level",
			modify:     func(c *Config) { c.Logging.Level = "verbose" },
			wantFields: []string{"logging.level"},
		},
		{
			name:   "upper case log level",
			modify: func(c *Config) { c.Logging.Level = "DEBUG" },
		},
		{
			name: "negative log rotation",
			modify: func(c *Config) {
				c.Logging.MaxSizeMB = -1
				c.Logging.MaxBackups = -1
			},
			wantFields: []string{"logging.max_size_mb", "logging.max_backups"},
		},
		{
			name: "rotation disabled",
			modify: func(c *Config) {
				c.Logging.MaxSizeMB = 0
				c.Logging.MaxBackups = 0
			},
		},
		{
			name:       "unknown theme",
			modify:     func(c *Config) { c.TUI.Theme = "neon" },
			wantFields: []string{"tui.theme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()

			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(errs), len(tt.wantFields), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("errs[%d].Field = %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}
