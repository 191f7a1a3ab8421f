package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/event"
)

// Plain is the non-interactive front end. It writes one line per settled
// snapshot and per status change, and submits every line read from its
// input as a search.
type Plain struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlain creates a Plain front end writing to out.
func NewPlain(out io.Writer) *Plain {
	return &Plain{out: out}
}

// Render implements aggregate.Sink.
func (p *Plain) Render(s aggregate.Snapshot) {
	p.println(s.String())
}

func (p *Plain) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// Run submits each non-empty line of in until ctx is cancelled. Reaching
// the end of in does not stop Run.
func (p *Plain) Run(ctx context.Context, in io.Reader, c Controller) error {
	group := c.Bus().NewGroup()
	defer group.Close()
	for _, t := range statusEvents {
		group.Subscribe(t, func(e event.Event) {
			if msg, ok := describe(e); ok {
				p.println("status: " + msg.Text)
			}
		})
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			if err != nil {
				return errors.Wrap(err, "reading search input")
			}
			scanErr = nil
		case line := <-lines:
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := c.Submit(line); err != nil && !errors.IsUserFacing(err) {
				p.println("error: " + err.Error())
			}
		}
	}
}
