package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/event"
	"github.com/Iron-Ham/pulse/internal/search"
	"github.com/Iron-Ham/pulse/internal/source"
	"github.com/Iron-Ham/pulse/internal/term"
	"github.com/Iron-Ham/pulse/internal/testutil"
)

type renders struct {
	mu    sync.Mutex
	snaps []aggregate.Snapshot
}

func (r *renders) Render(s aggregate.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *renders) all() []aggregate.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]aggregate.Snapshot(nil), r.snaps...)
}

func (r *renders) last() (aggregate.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return aggregate.Snapshot{}, false
	}
	return r.snaps[len(r.snaps)-1], true
}

// pushSource emits whatever is sent on its channel.
type pushSource chan int64

func (p pushSource) Run(ctx context.Context, emit func(int64)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-p:
			emit(v)
		}
	}
}

func foundIfText(_ context.Context, t term.Term) (bool, error) {
	_, isText := t.Text()
	return isText, nil
}

func TestController_AggregatesAllStreams(t *testing.T) {
	sink := &renders{}
	views, comments := make(pushSource), make(pushSource)
	c := New(sink, search.TransportFunc(foundIfText),
		WithWindow(30*time.Millisecond),
		WithSource(event.CounterViews, views),
		WithSource(event.CounterComments, comments),
	)
	defer c.Close()
	c.Start(context.Background())

	views <- 10
	comments <- 2
	if err := c.Submit("cats"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	want := aggregate.Snapshot{
		ViewCount:    aggregate.Count{Value: 10, Known: true},
		CommentCount: aggregate.Count{Value: 2, Known: true},
		SearchResult: aggregate.Verdict{Found: true, Known: true},
	}
	testutil.Eventually(t, 2*time.Second, func() bool {
		s, ok := sink.last()
		return ok && s == want
	}, "snapshot with all three fields")

	if got := c.Snapshot(); got != want {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
	if a, ok := c.CurrentSearch(); !ok || a.Status != search.StatusSucceeded {
		t.Errorf("CurrentSearch() = %+v, %v", a, ok)
	}
}

func TestController_RejectedInput(t *testing.T) {
	c := New(&renders{}, search.TransportFunc(foundIfText))
	defer c.Close()

	var got []event.SearchRejectedEvent
	c.Bus().Subscribe(event.TypeSearchRejected, func(e event.Event) {
		got = append(got, e.(event.SearchRejectedEvent))
	})

	err := c.Submit("5-2")
	var rej *term.Rejection
	if !errors.As(err, &rej) || rej.Reason != term.ReasonRangeOrder {
		t.Fatalf("Submit() error = %v, want range order rejection", err)
	}
	if !errors.IsUserFacing(err) {
		t.Error("rejection should be user facing")
	}
	if len(got) != 1 || got[0].Reason != term.ReasonRangeOrder || got[0].Message == "" {
		t.Errorf("rejected events = %+v", got)
	}
	if _, ok := c.CurrentSearch(); ok {
		t.Error("rejected input must not start a search")
	}
}

func TestController_NoRenderAfterClose(t *testing.T) {
	sink := &renders{}
	views := make(pushSource)
	c := New(sink, search.TransportFunc(foundIfText),
		WithWindow(50*time.Millisecond),
		WithSource(event.CounterViews, views),
	)
	c.Start(context.Background())

	views <- 1
	c.Close()

	time.Sleep(150 * time.Millisecond)
	if n := len(sink.all()); n != 0 {
		t.Errorf("renders after Close = %d, want 0", n)
	}
	if c.Bus().SubscriptionCount() != 0 {
		t.Errorf("subscriptions after Close = %d, want 0", c.Bus().SubscriptionCount())
	}
	if err := c.Submit("cats"); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("Submit() after Close = %v, want ErrClosed", err)
	}
	c.Close()
}

func TestController_SourceErrorDoesNotStopPipeline(t *testing.T) {
	sink := &renders{}
	broken := source.Func(func(context.Context, func(int64)) error {
		return errors.NewSourceError("cannot open", nil).WithSource("views")
	})
	comments := make(pushSource)
	c := New(sink, search.TransportFunc(foundIfText),
		WithWindow(20*time.Millisecond),
		WithSource(event.CounterViews, broken),
		WithSource(event.CounterComments, comments),
	)
	defer c.Close()
	c.Start(context.Background())

	comments <- 4
	testutil.Eventually(t, time.Second, func() bool {
		s, ok := sink.last()
		return ok && s.CommentCount.Value == 4
	}, "comment count rendered")
}

func TestController_SupersededSearchNeverRenders(t *testing.T) {
	sink := &renders{}
	release := make(chan struct{})
	tr := search.TransportFunc(func(_ context.Context, t term.Term) (bool, error) {
		if s, _ := t.Text(); s == "slow" {
			<-release
			return true, nil
		}
		return false, nil
	})
	c := New(sink, tr, WithWindow(20*time.Millisecond))
	defer c.Close()

	if err := c.Submit("slow"); err != nil {
		t.Fatal(err)
	}
	testutil.Eventually(t, time.Second, func() bool {
		a, _ := c.CurrentSearch()
		return a.Invocations == 1
	}, "slow search in flight")

	if err := c.Submit("fast"); err != nil {
		t.Fatal(err)
	}
	close(release)

	testutil.Eventually(t, time.Second, func() bool { return len(sink.all()) == 1 }, "verdict rendered")
	testutil.Never(t, 100*time.Millisecond, func() bool { return len(sink.all()) > 1 }, "stale verdict rendered")

	if s, _ := sink.last(); s.SearchResult != (aggregate.Verdict{Found: false, Known: true}) {
		t.Errorf("SearchResult = %v, want false", s.SearchResult)
	}
}
