package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "engine.window_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Source kinds.
const (
	SourceTicker = "ticker"
	SourceFile   = "file"
	SourceRedis  = "redis"
	SourceNone   = "none"
)

// Transport names.
const (
	TransportMemory = "memory"
	TransportHTTP   = "http"
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidTransports returns the list of valid search transports
func ValidTransports() []string {
	return []string{TransportMemory, TransportHTTP}
}

// ValidSourceKinds returns the list of valid counter source kinds
func ValidSourceKinds() []string {
	return []string{SourceTicker, SourceFile, SourceRedis, SourceNone}
}

// ValidThemes returns the list of valid TUI themes.
// Must match the palettes defined in internal/tui.
func ValidThemes() []string {
	return []string{"default", "monokai", "dracula", "nord"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateEngine()...)
	errors = append(errors, c.validateSearch()...)
	errors = append(errors, c.validateSource("sources.views", c.Sources.Views)...)
	errors = append(errors, c.validateSource("sources.comments", c.Sources.Comments)...)
	errors = append(errors, c.validateListenAddr("server.addr", c.Server.Addr, false)...)
	errors = append(errors, c.validateListenAddr("metrics.addr", c.Metrics.Addr, true)...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)

	return errors
}

// validateEngine validates the EngineConfig
func (c *Config) validateEngine() []ValidationError {
	var errors []ValidationError

	if c.Engine.WindowMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.window_ms",
			Value:   c.Engine.WindowMs,
			Message: "must be positive",
		})
	}

	// A window longer than a minute makes the display look frozen
	const maxWindowMs = 60000
	if c.Engine.WindowMs > maxWindowMs {
		errors = append(errors, ValidationError{
			Field:   "engine.window_ms",
			Value:   c.Engine.WindowMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxWindowMs),
		})
	}

	return errors
}

// validateSearch validates the SearchConfig
func (c *Config) validateSearch() []ValidationError {
	var errors []ValidationError
	s := c.Search

	if !slices.Contains(ValidTransports(), s.Transport) {
		errors = append(errors, ValidationError{
			Field:   "search.transport",
			Value:   s.Transport,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidTransports(), ", ")),
		})
	}

	if s.Transport == TransportHTTP {
		u, err := url.Parse(s.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "search.endpoint",
				Value:   s.Endpoint,
				Message: "must be an absolute http(s) URL",
			})
		}
		if s.TimeoutMs <= 0 {
			errors = append(errors, ValidationError{
				Field:   "search.timeout_ms",
				Value:   s.TimeoutMs,
				Message: "must be positive",
			})
		}
	}

	if s.FailureRate < 0 || s.FailureRate >= 1 {
		errors = append(errors, ValidationError{
			Field:   "search.failure_rate",
			Value:   s.FailureRate,
			Message: "must be at least 0 and below 1",
		})
	}

	if s.LatencyMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "search.latency_ms",
			Value:   s.LatencyMs,
			Message: "must be non-negative",
		})
	}

	if err := s.Retry.Policy().Validate(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "search.retry",
			Value:   s.Retry.Strategy,
			Message: err.Error(),
		})
	}

	return errors
}

// validateSource validates one SourceConfig
func (c *Config) validateSource(prefix string, s SourceConfig) []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidSourceKinds(), s.Kind) {
		return append(errors, ValidationError{
			Field:   prefix + ".kind",
			Value:   s.Kind,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSourceKinds(), ", ")),
		})
	}

	switch s.Kind {
	case SourceTicker, SourceRedis:
		if s.IntervalMs <= 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".interval_ms",
				Value:   s.IntervalMs,
				Message: "must be positive",
			})
		}
	}

	switch s.Kind {
	case SourceFile:
		if strings.TrimSpace(s.Path) == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".path",
				Value:   s.Path,
				Message: "is required for file sources",
			})
		}
	case SourceRedis:
		if strings.TrimSpace(s.Key) == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".key",
				Value:   s.Key,
				Message: "is required for redis sources",
			})
		}
		if len(c.Redis.Addrs) == 0 {
			errors = append(errors, ValidationError{
				Field:   "redis.addrs",
				Value:   c.Redis.Addrs,
				Message: fmt.Sprintf("is required when %s.kind is redis", prefix),
			})
		}
	}

	return errors
}

// validateListenAddr validates a host:port listen address
func (c *Config) validateListenAddr(field, addr string, optional bool) []ValidationError {
	if addr == "" {
		if optional {
			return nil
		}
		return []ValidationError{{Field: field, Value: addr, Message: "is required"}}
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return []ValidationError{{Field: field, Value: addr, Message: "must be host:port"}}
	}
	return nil
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 disables rotation)",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	return errors
}
