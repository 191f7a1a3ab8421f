// Package tui renders the aggregated snapshot and the search box in the
// terminal, with a line-oriented fallback for non-interactive output.
package tui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/event"
)

// Controller is the part of the pipeline the UI drives.
type Controller interface {
	Submit(raw string) error
	Bus() *event.Bus
}

// App is the interactive dashboard. It is also the engine's sink: every
// settled snapshot is sent into the running program.
type App struct {
	program    *tea.Program
	controller atomic.Pointer[Controller]
}

// Option configures an App.
type Option func(*options)

type options struct {
	theme   string
	program []tea.ProgramOption
}

// WithTheme selects the color theme.
func WithTheme(name string) Option {
	return func(o *options) { o.theme = name }
}

// WithProgramOptions passes options through to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(o *options) { o.program = append(o.program, opts...) }
}

// New creates the dashboard. Pass it as the sink when building the
// controller, then call Run with that controller.
func New(ctx context.Context, opts ...Option) *App {
	o := options{theme: "default"}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{}
	model := NewModel(o.theme, a.submit)
	popts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, o.program...)
	a.program = tea.NewProgram(model, popts...)
	return a
}

// Render implements aggregate.Sink.
func (a *App) Render(s aggregate.Snapshot) {
	a.program.Send(SnapshotMsg{Snapshot: s})
}

func (a *App) submit(raw string) error {
	c := a.controller.Load()
	if c == nil {
		return errors.ErrClosed
	}
	return (*c).Submit(raw)
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context, c Controller) error {
	a.controller.Store(&c)

	group := c.Bus().NewGroup()
	defer group.Close()
	for _, t := range statusEvents {
		group.Subscribe(t, func(e event.Event) {
			if msg, ok := describe(e); ok {
				a.program.Send(msg)
			}
		})
	}

	_, err := a.program.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Close stops the program. Pending Render calls return immediately.
func (a *App) Close() {
	a.program.Kill()
}
