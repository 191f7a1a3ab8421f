package tui

import (
	"fmt"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/event"
)

// SnapshotMsg carries a settled snapshot from the engine into the program.
type SnapshotMsg struct {
	Snapshot aggregate.Snapshot
}

// StatusKind classifies the search status line.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusSearching
	StatusRetrying
	StatusResolved
	StatusRejected
	StatusError
)

// StatusMsg replaces the search status line.
type StatusMsg struct {
	Kind StatusKind
	Text string
}

// submitDoneMsg reports the return value of a submission.
type submitDoneMsg struct {
	err error
}

// statusEvents are the bus events that drive the status line.
var statusEvents = []string{
	event.TypeSearchSubmitted,
	event.TypeSearchRetrying,
	event.TypeSearchResolved,
	event.TypeSearchRejected,
}

// describe translates a search event into a status line.
func describe(e event.Event) (StatusMsg, bool) {
	switch e := e.(type) {
	case event.SearchSubmittedEvent:
		return StatusMsg{Kind: StatusSearching, Text: fmt.Sprintf("searching %s", e.Term)}, true
	case event.SearchRetryingEvent:
		return StatusMsg{
			Kind: StatusRetrying,
			Text: fmt.Sprintf("attempt %d failed, retrying in %s", e.Invocation, e.Delay),
		}, true
	case event.SearchResolvedEvent:
		verdict := "not found"
		if e.Found {
			verdict = "found"
		}
		return StatusMsg{Kind: StatusResolved, Text: fmt.Sprintf("%s: %s", e.Term, verdict)}, true
	case event.SearchRejectedEvent:
		return StatusMsg{Kind: StatusRejected, Text: e.Message}, true
	}
	return StatusMsg{}, false
}
