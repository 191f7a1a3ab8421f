package event

import (
	"time"

	"github.com/Iron-Ham/pulse/internal/term"
)

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "counter.updated", "search.resolved")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeCounterUpdated  = "counter.updated"
	TypeSearchSubmitted = "search.submitted"
	TypeSearchRetrying  = "search.retrying"
	TypeSearchResolved  = "search.resolved"
	TypeSearchRejected  = "search.rejected"
)

// Counter names carried by CounterUpdatedEvent.
const (
	CounterViews    = "views"
	CounterComments = "comments"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Counter Events
// -----------------------------------------------------------------------------

// CounterUpdatedEvent is emitted whenever a counter source produces a value.
type CounterUpdatedEvent struct {
	baseEvent
	Counter string // CounterViews or CounterComments
	Value   int64
}

// NewCounterUpdatedEvent creates a CounterUpdatedEvent.
func NewCounterUpdatedEvent(counter string, value int64) CounterUpdatedEvent {
	return CounterUpdatedEvent{
		baseEvent: newBaseEvent(TypeCounterUpdated),
		Counter:   counter,
		Value:     value,
	}
}

// -----------------------------------------------------------------------------
// Search Events
// -----------------------------------------------------------------------------

// SearchSubmittedEvent is emitted when a new search attempt starts.
// Resubmitting a term that is still in flight does not emit it.
type SearchSubmittedEvent struct {
	baseEvent
	AttemptID uint64
	Term      term.Term
}

// NewSearchSubmittedEvent creates a SearchSubmittedEvent.
func NewSearchSubmittedEvent(attemptID uint64, t term.Term) SearchSubmittedEvent {
	return SearchSubmittedEvent{
		baseEvent: newBaseEvent(TypeSearchSubmitted),
		AttemptID: attemptID,
		Term:      t,
	}
}

// SearchRetryingEvent is emitted when a transport failure is about to be retried.
type SearchRetryingEvent struct {
	baseEvent
	AttemptID  uint64
	Invocation int           // 1-based number of the invocation that failed
	Delay      time.Duration // pause before the next invocation
	Err        error
}

// NewSearchRetryingEvent creates a SearchRetryingEvent.
func NewSearchRetryingEvent(attemptID uint64, invocation int, delay time.Duration, err error) SearchRetryingEvent {
	return SearchRetryingEvent{
		baseEvent:  newBaseEvent(TypeSearchRetrying),
		AttemptID:  attemptID,
		Invocation: invocation,
		Delay:      delay,
		Err:        err,
	}
}

// SearchResolvedEvent carries the verdict of an attempt that succeeded.
// It is the coordinator's result stream.
type SearchResolvedEvent struct {
	baseEvent
	AttemptID uint64
	Term      term.Term
	Found     bool
}

// NewSearchResolvedEvent creates a SearchResolvedEvent.
func NewSearchResolvedEvent(attemptID uint64, t term.Term, found bool) SearchResolvedEvent {
	return SearchResolvedEvent{
		baseEvent: newBaseEvent(TypeSearchResolved),
		AttemptID: attemptID,
		Term:      t,
		Found:     found,
	}
}

// SearchRejectedEvent is emitted when raw input fails to parse.
type SearchRejectedEvent struct {
	baseEvent
	Input   string
	Reason  term.Reason
	Message string // user-facing text
}

// NewSearchRejectedEvent creates a SearchRejectedEvent from a rejection.
func NewSearchRejectedEvent(rej *term.Rejection) SearchRejectedEvent {
	return SearchRejectedEvent{
		baseEvent: newBaseEvent(TypeSearchRejected),
		Input:     rej.Input,
		Reason:    rej.Reason,
		Message:   rej.Message(),
	}
}
