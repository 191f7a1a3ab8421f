package transport

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/search"
	"github.com/Iron-Ham/pulse/internal/term"
)

var _ search.Transport = (*Memory)(nil)

// ErrInjectedFailure is returned by a Memory index when fault injection fires.
var ErrInjectedFailure = errors.New("injected search failure")

// globMeta are the characters that turn a text term into a glob pattern.
const globMeta = "*?[{"

// Memory is an in-memory search index over a Corpus.
//
// Text terms match titles case-insensitively, as a glob pattern when the
// term contains glob metacharacters and as a substring otherwise. Range
// terms match item values inside the (inclusive) bounds.
type Memory struct {
	items       []Item
	failureRate float64
	latency     time.Duration
	roll        func() float64
	logger      *logging.Logger
}

// MemoryOption configures a Memory index.
type MemoryOption func(*Memory)

// WithFailureRate makes each invocation fail with probability rate.
func WithFailureRate(rate float64) MemoryOption {
	return func(m *Memory) {
		m.failureRate = rate
	}
}

// WithLatency delays every invocation by d, or until the context is done.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.latency = d
	}
}

// WithMemoryLogger sets the index logger.
func WithMemoryLogger(l *logging.Logger) MemoryOption {
	return func(m *Memory) {
		m.logger = l
	}
}

// withRoll replaces the random source used for fault injection.
func withRoll(f func() float64) MemoryOption {
	return func(m *Memory) {
		m.roll = f
	}
}

// NewMemory creates an index over corpus.
func NewMemory(corpus *Corpus, opts ...MemoryOption) *Memory {
	m := &Memory{roll: rand.Float64}
	if corpus != nil {
		m.items = append([]Item(nil), corpus.Items...)
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger).WithComponent("transport.memory")
	return m
}

// Len returns the number of indexed items.
func (m *Memory) Len() int {
	return len(m.items)
}

// Invoke implements search.Transport.
func (m *Memory) Invoke(ctx context.Context, t term.Term) (bool, error) {
	matches, err := m.Search(ctx, t)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// Search returns the items matching t after applying the configured latency
// and fault injection.
func (m *Memory) Search(ctx context.Context, t term.Term) ([]Item, error) {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failureRate > 0 && m.roll() < m.failureRate {
		m.logger.Debug("injecting search failure",
			"term", t.String(),
			"request_id", search.RequestID(ctx),
		)
		return nil, ErrInjectedFailure
	}
	return m.Match(t)
}

// Match returns the items matching t.
func (m *Memory) Match(t term.Term) ([]Item, error) {
	pred, err := matcher(t)
	if err != nil {
		return nil, err
	}
	var out []Item
	for _, item := range m.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func matcher(t term.Term) (func(Item) bool, error) {
	switch t.Kind() {
	case term.KindText:
		text, _ := t.Text()
		pattern := strings.ToLower(text)
		if !strings.ContainsAny(pattern, globMeta) {
			return func(it Item) bool {
				return strings.Contains(strings.ToLower(it.Title), pattern)
			}, nil
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewValidationError("invalid glob pattern").
				WithField("text").
				WithValue(text).
				WithCause(err)
		}
		return func(it Item) bool {
			return g.Match(strings.ToLower(it.Title))
		}, nil

	case term.KindRange:
		return func(it Item) bool {
			return t.Contains(it.Value)
		}, nil

	default:
		return nil, fmt.Errorf("%w: zero term", errors.ErrInvalidInput)
	}
}
