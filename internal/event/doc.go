// Package event provides a pub-sub event bus for decoupled communication
// between pulse components.
//
// Counter sources, the search coordinator and the controller publish events
// without knowing who consumes them. The controller subscribes the
// aggregation engine to the value-carrying events, and the TUI subscribes to
// rejections to show them to the user.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Group]: A set of subscriptions released together on teardown
//
// # Event Catalogue
//
//   - [CounterUpdatedEvent] (counter.updated): a counter source emitted a value
//   - [SearchSubmittedEvent] (search.submitted): a new search attempt started
//   - [SearchRetryingEvent] (search.retrying): a transport failure will be retried
//   - [SearchResolvedEvent] (search.resolved): an attempt succeeded with a verdict
//   - [SearchRejectedEvent] (search.rejected): raw input did not parse
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously on the publishing goroutine and protected against panics.
// Handlers must not block; hand work off to a channel instead.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	subs := bus.NewGroup()
//	subs.Subscribe(event.TypeCounterUpdated, func(e event.Event) {
//	    u := e.(event.CounterUpdatedEvent)
//	    engine.OnUpdate(aggregate.ViewCount(u.Value))
//	})
//	bus.Publish(event.NewCounterUpdatedEvent(event.CounterViews, 42))
//	subs.Close() // releases every subscription in the group
package event
