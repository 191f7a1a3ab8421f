// Package controller wires user input, counter sources, the search
// coordinator and the aggregation engine together, and owns their teardown.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/event"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/metrics"
	"github.com/Iron-Ham/pulse/internal/search"
	"github.com/Iron-Ham/pulse/internal/source"
	"github.com/Iron-Ham/pulse/internal/term"
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	bus     *event.Bus
	logger  *logging.Logger
	window  time.Duration
	policy  search.RetryPolicy
	sources map[string]source.Source
}

// WithBus uses bus instead of a private one.
func WithBus(bus *event.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWindow sets the engine quiescence window.
func WithWindow(d time.Duration) Option {
	return func(o *options) {
		o.window = d
	}
}

// WithRetryPolicy sets the coordinator retry policy.
func WithRetryPolicy(p search.RetryPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithSource attaches a counter source. counter is event.CounterViews or
// event.CounterComments.
func WithSource(counter string, s source.Source) Option {
	return func(o *options) {
		o.sources[counter] = s
	}
}

// Controller is the owner of one running pulse pipeline.
type Controller struct {
	bus     *event.Bus
	group   *event.Group
	engine  *aggregate.Engine
	coord   *search.Coordinator
	logger  *logging.Logger
	sources map[string]source.Source

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      conc.WaitGroup
}

// New builds the pipeline rendering into sink and searching through tr.
// Sources do not run until Start.
func New(sink aggregate.Sink, tr search.Transport, opts ...Option) *Controller {
	o := &options{
		policy:  search.DefaultRetryPolicy(),
		sources: make(map[string]source.Source),
	}
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.OrNop(o.logger)
	bus := o.bus
	if bus == nil {
		bus = event.NewBus(logger)
	}

	c := &Controller{
		bus:     bus,
		group:   bus.NewGroup(),
		logger:  logger.WithComponent("controller"),
		sources: o.sources,
	}
	c.engine = aggregate.NewEngine(sink,
		aggregate.WithWindow(o.window),
		aggregate.WithLogger(logger),
	)
	c.coord = search.NewCoordinator(tr, bus,
		search.WithRetryPolicy(o.policy),
		search.WithLogger(logger),
	)

	c.group.Subscribe(event.TypeCounterUpdated, c.onCounter)
	c.group.Subscribe(event.TypeSearchResolved, c.onResolved)
	return c
}

func (c *Controller) onCounter(e event.Event) {
	ev, ok := e.(event.CounterUpdatedEvent)
	if !ok {
		return
	}
	switch ev.Counter {
	case event.CounterViews:
		c.engine.OnUpdate(aggregate.ViewCount(ev.Value))
	case event.CounterComments:
		c.engine.OnUpdate(aggregate.CommentCount(ev.Value))
	default:
		c.logger.Warn("update for unknown counter", "counter", ev.Counter)
	}
}

func (c *Controller) onResolved(e event.Event) {
	if ev, ok := e.(event.SearchResolvedEvent); ok {
		c.engine.OnUpdate(aggregate.SearchResult(ev.Found))
	}
}

// Bus returns the event bus carrying the pipeline's events.
func (c *Controller) Bus() *event.Bus {
	return c.bus
}

// Snapshot returns the last rendered snapshot.
func (c *Controller) Snapshot() aggregate.Snapshot {
	return c.engine.Last()
}

// CurrentSearch returns the coordinator's current attempt.
func (c *Controller) CurrentSearch() (search.Attempt, bool) {
	return c.coord.Current()
}

// Start runs every attached source in the background until Close or until
// ctx is done. It has no effect after the first call.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	for name, src := range c.sources {
		emit := source.Instrument(name, func(v int64) {
			c.bus.Publish(event.NewCounterUpdatedEvent(name, v))
		})
		c.wg.Go(func() {
			if err := src.Run(ctx, emit); err != nil {
				metrics.SourceErrorsTotal.WithLabelValues(name).Inc()
				c.logger.Error("counter source stopped", "source", name, "error", err.Error())
			}
		})
	}
	c.logger.Info("pipeline started", "sources", len(c.sources))
}

// Submit parses raw user input and hands the term to the coordinator.
// Rejected input returns the *term.Rejection, which is also published as a
// SearchRejectedEvent.
func (c *Controller) Submit(raw string) error {
	t, err := term.Parse(raw)
	if err != nil {
		var rej *term.Rejection
		if errors.As(err, &rej) {
			metrics.SearchRejectionsTotal.WithLabelValues(rej.Reason.String()).Inc()
			c.bus.Publish(event.NewSearchRejectedEvent(rej))
			c.logger.Debug("search input rejected", "input", raw, "reason", rej.Reason.String())
		}
		return err
	}
	if c.coord.Submit(t) == 0 {
		return errors.ErrClosed
	}
	return nil
}

// Close releases every subscription together, stops the sources, abandons
// any search in flight and stops the engine. No render happens after Close
// returns. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	c.group.Close()
	if cancel != nil {
		cancel()
	}
	if r := c.wg.WaitAndRecover(); r != nil {
		c.logger.Error("counter source panicked", "error", r.AsError().Error())
	}
	c.coord.Close()
	c.engine.Close()
	c.logger.Info("pipeline closed")
}
