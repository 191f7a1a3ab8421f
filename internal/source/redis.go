package source

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/metrics"
)

// RedisConfig holds connection parameters for Redis-backed counters.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// NewRedisClient connects to Redis via rueidis.
func NewRedisClient(cfg RedisConfig) (rueidis.Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.NewValidationError("addrs is required").WithField("redis.addrs")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, errors.NewSourceError("failed to create redis client", err)
	}
	return client, nil
}

// getter reads one string key. A missing key reports found=false.
type getter interface {
	get(ctx context.Context, key string) (value string, found bool, err error)
}

type rueidisGetter struct {
	client rueidis.Client
}

func (g rueidisGetter) get(ctx context.Context, key string) (string, bool, error) {
	cmd := g.client.B().Get().Key(key).Build()
	s, err := g.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return s, true, nil
}

// Redis polls an integer key and emits its value whenever it changes.
// A missing key emits nothing; read failures are logged and retried on the
// next tick.
type Redis struct {
	Name     string
	Key      string
	Interval time.Duration
	Logger   *logging.Logger

	kv getter
}

// NewRedis creates a Redis counter source reading key through client.
func NewRedis(name string, client rueidis.Client, key string, interval time.Duration, logger *logging.Logger) *Redis {
	return &Redis{
		Name:     name,
		Key:      key,
		Interval: interval,
		Logger:   logger,
		kv:       rueidisGetter{client: client},
	}
}

// Run implements Source.
func (r *Redis) Run(ctx context.Context, emit func(int64)) error {
	if r.Interval <= 0 {
		return invalidInterval(r.Interval)
	}
	if r.Key == "" {
		return errors.NewValidationError("key is required").WithField(fmt.Sprintf("sources.%s.key", r.Name))
	}
	logger := logging.OrNop(r.Logger).WithComponent("source").With("source", r.Name, "key", r.Key)

	var (
		last    int64
		emitted bool
	)
	poll := func() {
		s, found, err := r.kv.get(ctx, r.Key)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.SourceErrorsTotal.WithLabelValues(r.Name).Inc()
			logger.Warn("failed to read counter key", "error", err.Error())
			return
		}
		if !found {
			return
		}
		v, err := parseCount(s)
		if err != nil {
			metrics.SourceErrorsTotal.WithLabelValues(r.Name).Inc()
			logger.Warn("ignoring counter key content", "error", err.Error())
			return
		}
		if emitted && v == last {
			return
		}
		last, emitted = v, true
		emit(v)
	}

	poll()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		}
	}
}
