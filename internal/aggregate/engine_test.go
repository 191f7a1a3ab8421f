package aggregate

import (
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/pulse/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// recordingSink records every render with the time it happened.
type recordingSink struct {
	mu      sync.Mutex
	renders []Snapshot
	at      []time.Time
	ch      chan Snapshot
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan Snapshot, 16)}
}

func (s *recordingSink) Render(snap Snapshot) {
	s.mu.Lock()
	s.renders = append(s.renders, snap)
	s.at = append(s.at, time.Now())
	s.mu.Unlock()
	s.ch <- snap
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.renders)
}

func (s *recordingSink) wait(t *testing.T, timeout time.Duration) Snapshot {
	t.Helper()
	select {
	case snap := <-s.ch:
		return snap
	case <-time.After(timeout):
		t.Fatalf("no render within %v", timeout)
		return Snapshot{}
	}
}

func TestEngine_DebounceMergesUpdatesInsideWindow(t *testing.T) {
	sink := newRecordingSink()
	window := 200 * time.Millisecond
	e := NewEngine(sink, WithWindow(window))
	defer e.Close()

	start := time.Now()
	e.OnUpdate(ViewCount(10))
	time.Sleep(100 * time.Millisecond)
	e.OnUpdate(SearchResult(true))

	got := sink.wait(t, 2*time.Second)
	elapsed := time.Since(start)

	want := Snapshot{
		ViewCount:    Count{Value: 10, Known: true},
		SearchResult: Verdict{Found: true, Known: true},
	}
	if got != want {
		t.Errorf("rendered %v, want %v", got, want)
	}
	// The second update restarted the window at t=100
	if elapsed < 300*time.Millisecond {
		t.Errorf("render after %v, want at least 300ms", elapsed)
	}

	time.Sleep(2 * window)
	if n := sink.count(); n != 1 {
		t.Errorf("render count = %d, want 1", n)
	}
}

func TestEngine_SuppressesUnchangedSnapshot(t *testing.T) {
	sink := newRecordingSink()
	window := 30 * time.Millisecond
	e := NewEngine(sink, WithWindow(window))
	defer e.Close()

	before := testutil.ToFloat64(metrics.EngineSuppressedTotal)

	e.OnUpdate(CommentCount(3))
	sink.wait(t, time.Second)

	// Change then revert inside one window: settles on the rendered value
	e.OnUpdate(CommentCount(4))
	e.OnUpdate(CommentCount(3))
	time.Sleep(5 * window)

	if n := sink.count(); n != 1 {
		t.Errorf("render count = %d, want 1", n)
	}
	if d := testutil.ToFloat64(metrics.EngineSuppressedTotal) - before; d != 1 {
		t.Errorf("suppressed delta = %v, want 1", d)
	}
}

func TestEngine_IdenticalUpdatesRenderOnce(t *testing.T) {
	sink := newRecordingSink()
	window := 30 * time.Millisecond
	e := NewEngine(sink, WithWindow(window))
	defer e.Close()

	e.OnUpdate(ViewCount(7))
	sink.wait(t, time.Second)

	for range 5 {
		e.OnUpdate(ViewCount(7))
	}
	time.Sleep(5 * window)

	if n := sink.count(); n != 1 {
		t.Errorf("render count = %d, want 1", n)
	}
	if got := e.Last().ViewCount; got != (Count{Value: 7, Known: true}) {
		t.Errorf("Last().ViewCount = %v, want 7", got)
	}
}

func TestEngine_SameValueDoesNotRestartWindow(t *testing.T) {
	sink := newRecordingSink()
	window := 150 * time.Millisecond
	e := NewEngine(sink, WithWindow(window))
	defer e.Close()

	start := time.Now()
	e.OnUpdate(ViewCount(1))
	stop := time.After(window + 100*time.Millisecond)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()

	// Keep repeating the pending value; the render must still land near
	// the original deadline.
	go func() {
		for {
			select {
			case <-tick.C:
				e.OnUpdate(ViewCount(1))
			case <-stop:
				return
			}
		}
	}()

	sink.wait(t, 2*time.Second)
	if elapsed := time.Since(start); elapsed > window+100*time.Millisecond {
		t.Errorf("render after %v, window was restarted by unchanged updates", elapsed)
	}
}

func TestEngine_FirstEmissionIsAChange(t *testing.T) {
	sink := newRecordingSink()
	e := NewEngine(sink, WithWindow(20*time.Millisecond))
	defer e.Close()

	// Zero is a real value, distinct from unknown
	e.OnUpdate(ViewCount(0))
	got := sink.wait(t, time.Second)
	if !got.ViewCount.Known || got.ViewCount.Value != 0 {
		t.Errorf("ViewCount = %+v, want known 0", got.ViewCount)
	}
	if got.CommentCount.Known || got.SearchResult.Known {
		t.Errorf("unexpected known fields in %v", got)
	}
}

func TestEngine_NoRenderAfterClose(t *testing.T) {
	sink := newRecordingSink()
	window := 50 * time.Millisecond
	e := NewEngine(sink, WithWindow(window))

	e.OnUpdate(ViewCount(1))
	e.OnUpdate(CommentCount(2))
	e.Close()

	time.Sleep(3 * window)
	if n := sink.count(); n != 0 {
		t.Errorf("render count after Close = %d, want 0", n)
	}

	// Further updates and a second Close are harmless
	e.OnUpdate(ViewCount(5))
	e.Close()
	if n := sink.count(); n != 0 {
		t.Errorf("render count = %d, want 0", n)
	}
}

func TestEngine_DefaultWindow(t *testing.T) {
	e := NewEngine(SinkFunc(func(Snapshot) {}), WithWindow(-1))
	defer e.Close()

	if e.Window() != DefaultWindow {
		t.Errorf("Window() = %v, want %v", e.Window(), DefaultWindow)
	}
}

func TestSnapshot_String(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"unknown", Snapshot{}, "views=? comments=? found=?"},
		{
			"known",
			Snapshot{
				ViewCount:    Count{Value: 12, Known: true},
				CommentCount: Count{Value: 0, Known: true},
				SearchResult: Verdict{Found: false, Known: true},
			},
			"views=12 comments=0 found=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestField_String(t *testing.T) {
	tests := []struct {
		f    Field
		want string
	}{
		{FieldViewCount, "view_count"},
		{FieldCommentCount, "comment_count"},
		{FieldSearchResult, "search_result"},
		{Field(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Field(%d).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}
