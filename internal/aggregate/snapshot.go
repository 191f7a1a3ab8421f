package aggregate

import (
	"fmt"
	"strconv"
)

// Field names one input stream of the engine.
type Field int

const (
	FieldViewCount Field = iota + 1
	FieldCommentCount
	FieldSearchResult
)

// String returns the field name used in logs and metric labels.
func (f Field) String() string {
	switch f {
	case FieldViewCount:
		return "view_count"
	case FieldCommentCount:
		return "comment_count"
	case FieldSearchResult:
		return "search_result"
	default:
		return "unknown"
	}
}

// Count is a counter value that may still be unknown.
type Count struct {
	Value int64
	Known bool
}

// String formats the count, or "?" while unknown.
func (c Count) String() string {
	if !c.Known {
		return "?"
	}
	return strconv.FormatInt(c.Value, 10)
}

// Verdict is a search outcome that may still be unknown.
type Verdict struct {
	Found bool
	Known bool
}

// String formats the verdict, or "?" while unknown.
func (v Verdict) String() string {
	if !v.Known {
		return "?"
	}
	return strconv.FormatBool(v.Found)
}

// Snapshot is the aggregated value handed to the sink. The zero value has
// every field unknown. Snapshots compare with ==.
type Snapshot struct {
	ViewCount    Count
	CommentCount Count
	SearchResult Verdict
}

// String formats the snapshot for log lines.
func (s Snapshot) String() string {
	return fmt.Sprintf("views=%s comments=%s found=%s", s.ViewCount, s.CommentCount, s.SearchResult)
}

// with returns a copy of s with u applied.
func (s Snapshot) with(u Update) Snapshot {
	switch u.Field {
	case FieldViewCount:
		s.ViewCount = Count{Value: u.Count, Known: true}
	case FieldCommentCount:
		s.CommentCount = Count{Value: u.Count, Known: true}
	case FieldSearchResult:
		s.SearchResult = Verdict{Found: u.Found, Known: true}
	}
	return s
}

// Update is one emission from an input stream.
type Update struct {
	Field Field
	Count int64 // FieldViewCount and FieldCommentCount
	Found bool  // FieldSearchResult
}

// ViewCount builds a view-count update.
func ViewCount(n int64) Update { return Update{Field: FieldViewCount, Count: n} }

// CommentCount builds a comment-count update.
func CommentCount(n int64) Update { return Update{Field: FieldCommentCount, Count: n} }

// SearchResult builds a search-result update.
func SearchResult(found bool) Update { return Update{Field: FieldSearchResult, Found: found} }

// Sink consumes settled snapshots. Render is called from the engine's
// goroutine, never concurrently with itself.
type Sink interface {
	Render(Snapshot)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Snapshot)

// Render calls f(s).
func (f SinkFunc) Render(s Snapshot) { f(s) }
