// Package search owns the lifecycle of the one outstanding search request.
//
// A Coordinator turns validated terms into attempts. Each attempt drives its
// transport until it succeeds, retrying every failure for as long as the
// attempt is current. Submitting a different term supersedes the current
// attempt: its context is cancelled, no further invocation is issued for it
// and any response that arrives late is discarded by an attempt-ID check.
//
// Verdicts are published on the event bus as event.SearchResolvedEvent.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/event"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/metrics"
	"github.com/Iron-Ham/pulse/internal/term"
)

// Transport performs one remote search. Any returned error is treated as
// transient. Implementations should return promptly once ctx is done.
type Transport interface {
	Invoke(ctx context.Context, t term.Term) (found bool, err error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, t term.Term) (bool, error)

// Invoke calls f(ctx, t).
func (f TransportFunc) Invoke(ctx context.Context, t term.Term) (bool, error) { return f(ctx, t) }

// Status is the lifecycle state of an attempt.
type Status int

const (
	StatusPending Status = iota + 1
	StatusSucceeded
	StatusFailed
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// inFlight reports whether an identical submission should join the attempt.
func (s Status) inFlight() bool {
	return s == StatusPending || s == StatusFailed
}

// Attempt is a read-only view of one search attempt.
type Attempt struct {
	ID          uint64
	Term        term.Term
	Status      Status
	Invocations int
}

type attempt struct {
	Attempt
	ctx    context.Context
	cancel context.CancelFunc
}

// Coordinator serialises search attempts. It is safe for concurrent use.
//
// Bus handlers for events published by the coordinator run while its lock is
// held and must not call back into it.
type Coordinator struct {
	transport Transport
	bus       *event.Bus
	logger    *logging.Logger
	policy    RetryPolicy

	mu      sync.Mutex
	current *attempt
	nextID  uint64
	closed  bool

	wg sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithRetryPolicy sets the pause between failed invocations.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

// NewCoordinator creates a coordinator issuing requests through transport
// and publishing lifecycle events on bus.
func NewCoordinator(transport Transport, bus *event.Bus, opts ...Option) *Coordinator {
	c := &Coordinator{
		transport: transport,
		bus:       bus,
		policy:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger).WithComponent("search")
	return c
}

// Submit starts serving t and returns the ID of the attempt doing so.
//
// If t equals the term of the current attempt and that attempt is still in
// flight (pending, or failed and waiting to retry), the existing attempt ID
// is returned and no request is issued. Otherwise the current attempt is
// abandoned and a new one starts. Submit returns 0 after Close.
func (c *Coordinator) Submit(t term.Term) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}

	if cur := c.current; cur != nil && cur.Term.Equal(t) && cur.Status.inFlight() {
		metrics.SearchDeduplicatedTotal.Inc()
		c.logger.Debug("identical term already in flight",
			"attempt_id", cur.ID,
			"term", t.String(),
		)
		return cur.ID
	}

	c.abandonLocked()

	c.nextID++
	ctx, cancel := context.WithCancel(context.Background())
	a := &attempt{
		Attempt: Attempt{ID: c.nextID, Term: t, Status: StatusPending},
		ctx:     ctx,
		cancel:  cancel,
	}
	c.current = a

	metrics.SearchAttemptsTotal.Inc()
	c.logger.Info("search submitted", "attempt_id", a.ID, "term", t.String())
	c.bus.Publish(event.NewSearchSubmittedEvent(a.ID, t))

	c.wg.Add(1)
	go c.run(a)
	return a.ID
}

// Current returns a copy of the current attempt.
func (c *Coordinator) Current() (Attempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Attempt{}, false
	}
	return c.current.Attempt, true
}

// Close abandons the current attempt and waits for its goroutine to exit.
// Later calls to Submit return 0.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.abandonLocked()
	c.mu.Unlock()

	c.wg.Wait()
}

// abandonLocked cancels the current attempt if it has not finished.
// Caller must hold c.mu.
func (c *Coordinator) abandonLocked() {
	cur := c.current
	if cur == nil {
		return
	}
	cur.cancel()
	if cur.Status.inFlight() {
		cur.Status = StatusAbandoned
		c.logger.Info("search abandoned",
			"attempt_id", cur.ID,
			"term", cur.Term.String(),
			"invocations", cur.Invocations,
		)
	}
}

func (c *Coordinator) run(a *attempt) {
	defer c.wg.Done()
	defer a.cancel()

	log := c.logger.WithAttempt(a.ID)

	operation := func() (bool, error) {
		n, ok := c.begin(a)
		if !ok {
			return false, backoff.Permanent(errors.ErrAttemptSuperseded)
		}

		requestID := uuid.NewString()
		ctx := WithRequestID(a.ctx, requestID)

		start := time.Now()
		found, err := c.transport.Invoke(ctx, a.Term)
		metrics.SearchInvocationDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			err = errors.NewTransportError("search invocation failed", err).
				WithTerm(a.Term.String()).
				WithAttempt(a.ID).
				WithInvocation(n)
		}
		if !c.settle(a, found, err) {
			metrics.SearchInvocationsTotal.WithLabelValues(metrics.OutcomeDiscarded).Inc()
			log.Debug("discarding response for superseded attempt", "request_id", requestID)
			return false, backoff.Permanent(errors.ErrAttemptSuperseded)
		}
		if err != nil {
			metrics.SearchInvocationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			log.Warn("search invocation failed",
				"request_id", requestID,
				"invocation", n,
				"error", err.Error(),
			)
			return false, err
		}
		metrics.SearchInvocationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		log.Info("search resolved",
			"request_id", requestID,
			"invocation", n,
			"found", found,
		)
		return found, nil
	}

	notify := func(err error, delay time.Duration) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.current != a {
			return
		}
		c.bus.Publish(event.NewSearchRetryingEvent(a.ID, a.Invocations, delay, err))
	}

	_, err := backoff.Retry(a.ctx, operation,
		backoff.WithBackOff(c.policy.NewBackOff()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil && !errors.Is(err, errors.ErrAttemptSuperseded) {
		log.Debug("attempt stopped", "error", err.Error())
	}
}

// begin marks a as pending and returns its 1-based invocation number, or
// false if a is no longer current.
func (c *Coordinator) begin(a *attempt) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != a || !a.Status.inFlight() {
		return 0, false
	}
	a.Invocations++
	a.Status = StatusPending
	return a.Invocations, true
}

// settle records the outcome of one invocation and publishes a verdict on
// success. It returns false, changing nothing, if a has been superseded.
func (c *Coordinator) settle(a *attempt, found bool, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != a || a.Status != StatusPending {
		return false
	}
	if err != nil {
		a.Status = StatusFailed
		return true
	}
	a.Status = StatusSucceeded
	c.bus.Publish(event.NewSearchResolvedEvent(a.ID, a.Term, found))
	return true
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the invocation request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the invocation request ID carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
