// Package source provides the counter producers feeding the aggregation
// engine: a periodic ticker, a watched file and a polled Redis key.
package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/metrics"
)

// Source produces counter values until its context is done.
//
// Run blocks, calling emit once per produced value from a single goroutine,
// and returns nil when ctx is cancelled. A non-nil error means the source
// could not start or failed permanently.
type Source interface {
	Run(ctx context.Context, emit func(int64)) error
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context, emit func(int64)) error

// Run calls f(ctx, emit).
func (f Func) Run(ctx context.Context, emit func(int64)) error { return f(ctx, emit) }

// Instrument wraps emit so every value is counted under name.
func Instrument(name string, emit func(int64)) func(int64) {
	c := metrics.SourceEmissionsTotal.WithLabelValues(name)
	return func(v int64) {
		c.Inc()
		emit(v)
	}
}

// parseCount reads a counter value from text such as file content or a
// Redis string. Surrounding whitespace is ignored.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", errors.ErrSourceValue)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errors.ErrSourceValue, s)
	}
	return v, nil
}

func invalidInterval(d time.Duration) error {
	return errors.NewValidationError("interval must be positive").
		WithField("interval_ms").
		WithValue(d.Milliseconds())
}
