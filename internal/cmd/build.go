package cmd

import (
	"fmt"
	"os"

	"github.com/redis/rueidis"

	"github.com/Iron-Ham/pulse/internal/config"
	"github.com/Iron-Ham/pulse/internal/event"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/search"
	"github.com/Iron-Ham/pulse/internal/source"
	"github.com/Iron-Ham/pulse/internal/transport"
)

// createLogger creates the logger described by cfg, writing to dir when
// cfg does not name one. Log creation failure shouldn't prevent pulse from
// starting, so it falls back to a NopLogger.
func createLogger(cfg *config.Config, fallbackDir string) *logging.Logger {
	dir := cfg.Logging.Dir
	if dir == "" {
		dir = fallbackDir
	}

	logger, err := logging.NewLoggerWithRotation(dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

// sourceSet holds the configured counter sources and whatever they share.
type sourceSet struct {
	sources map[string]source.Source
	redis   rueidis.Client
}

// Close releases the shared Redis client, if any.
func (s *sourceSet) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
}

// buildSources creates the view and comment sources from cfg.
func buildSources(cfg *config.Config, logger *logging.Logger) (*sourceSet, error) {
	set := &sourceSet{sources: make(map[string]source.Source)}

	named := []struct {
		counter string
		cfg     config.SourceConfig
	}{
		{event.CounterViews, cfg.Sources.Views},
		{event.CounterComments, cfg.Sources.Comments},
	}

	for _, n := range named {
		switch n.cfg.Kind {
		case config.SourceNone:
			continue
		case config.SourceTicker:
			set.sources[n.counter] = source.Ticker{
				Start:    n.cfg.Start,
				Step:     n.cfg.Step,
				Interval: n.cfg.Interval(),
			}
		case config.SourceFile:
			set.sources[n.counter] = source.File{
				Name:   n.counter,
				Path:   n.cfg.Path,
				Logger: logger,
			}
		case config.SourceRedis:
			if set.redis == nil {
				client, err := source.NewRedisClient(source.RedisConfig{
					Addrs:    cfg.Redis.Addrs,
					Username: cfg.Redis.Username,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				if err != nil {
					return nil, err
				}
				set.redis = client
			}
			set.sources[n.counter] = source.NewRedis(n.counter, set.redis, n.cfg.Key, n.cfg.Interval(), logger)
		default:
			set.Close()
			return nil, fmt.Errorf("unknown source kind %q for %s", n.cfg.Kind, n.counter)
		}
	}

	return set, nil
}

// buildTransport creates the search transport selected by cfg.
func buildTransport(cfg *config.Config, logger *logging.Logger) (search.Transport, error) {
	switch cfg.Search.Transport {
	case config.TransportHTTP:
		return transport.NewHTTP(cfg.Search.Endpoint, cfg.Search.Timeout(), logger)
	case config.TransportMemory:
		return buildIndex(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown search transport %q", cfg.Search.Transport)
	}
}

// buildIndex loads the corpus and creates the in-memory index.
func buildIndex(cfg *config.Config, logger *logging.Logger) (*transport.Memory, error) {
	corpus, err := transport.LoadCorpus(cfg.Search.Corpus)
	if err != nil {
		return nil, err
	}
	return transport.NewMemory(corpus,
		transport.WithFailureRate(cfg.Search.FailureRate),
		transport.WithLatency(cfg.Search.Latency()),
		transport.WithMemoryLogger(logger),
	), nil
}
