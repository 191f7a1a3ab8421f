// Package aggregate merges the latest value of several asynchronous input
// streams into one Snapshot and hands it to a Sink under a debounce policy.
//
// An update that changes the pending snapshot starts (or restarts) a
// quiescence window. When the window elapses without further changes the
// pending snapshot is rendered once, unless it equals the last rendered
// snapshot. All snapshot state lives on the engine's own goroutine.
package aggregate

import (
	"sync"
	"time"

	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/metrics"
)

// DefaultWindow is the quiescence window used when none is configured.
const DefaultWindow = 200 * time.Millisecond

// Engine coalesces updates and renders settled snapshots.
type Engine struct {
	window  time.Duration
	sink    Sink
	logger  *logging.Logger
	updates chan Update

	mu   sync.Mutex // guards last
	last Snapshot

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithWindow sets the quiescence window. Non-positive values are ignored.
func WithWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an engine rendering into sink and starts its loop.
// Call Close to stop it.
func NewEngine(sink Sink, opts ...Option) *Engine {
	e := &Engine{
		window:  DefaultWindow,
		sink:    sink,
		updates: make(chan Update, 64),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrNop(e.logger).WithComponent("aggregate")

	go e.loop()
	return e
}

// OnUpdate feeds one emission into the engine. Updates are applied in call
// order. After Close, OnUpdate is a no-op.
func (e *Engine) OnUpdate(u Update) {
	select {
	case <-e.stopCh:
		return
	default:
	}
	select {
	case e.updates <- u:
	case <-e.stopCh:
	}
}

// Last returns the most recently rendered snapshot.
func (e *Engine) Last() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Window returns the configured quiescence window.
func (e *Engine) Window() time.Duration {
	return e.window
}

// Close stops the engine and drops any pending render. When Close returns
// the sink will not be called again. It is safe to call more than once.
func (e *Engine) Close() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
	})
	<-e.doneCh
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	timer := time.NewTimer(e.window)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var (
		pending  Snapshot // rendered snapshot plus changes received since
		rendered Snapshot
		armed    bool
	)

	for {
		select {
		case <-e.stopCh:
			if armed {
				e.logger.Debug("engine closed with pending render dropped", "snapshot", pending.String())
			}
			return

		case u := <-e.updates:
			metrics.EngineUpdatesTotal.WithLabelValues(u.Field.String()).Inc()
			next := pending.with(u)
			if next == pending {
				// Not a change: the window keeps its original deadline
				continue
			}
			pending = next
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(e.window)
			armed = true

		case <-timer.C:
			armed = false
			// A Close racing with the timer must win
			select {
			case <-e.stopCh:
				return
			default:
			}
			if pending == rendered {
				metrics.EngineSuppressedTotal.Inc()
				e.logger.Debug("settled snapshot unchanged, render suppressed", "snapshot", pending.String())
				continue
			}
			rendered = pending
			e.mu.Lock()
			e.last = rendered
			e.mu.Unlock()

			metrics.EngineRendersTotal.Inc()
			e.logger.Debug("rendering snapshot", "snapshot", rendered.String())
			e.sink.Render(rendered)
		}
	}
}
