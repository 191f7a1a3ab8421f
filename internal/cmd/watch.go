package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/config"
	"github.com/Iron-Ham/pulse/internal/controller"
	"github.com/Iron-Ham/pulse/internal/metrics"
	"github.com/Iron-Ham/pulse/internal/searchd"
	"github.com/Iron-Ham/pulse/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live counters and search",
	Long: `Run the aggregation pipeline and show its snapshot.

On a terminal this opens the dashboard with a search box. Otherwise every
settled snapshot is printed as one line and each line read from stdin is
submitted as a search.

Examples:
  # Dashboard with the built-in corpus
  pulse watch

  # Search a remote index, retrying with exponential backoff
  PULSE_SEARCH_RETRY_STRATEGY=exponential pulse watch --transport http --endpoint http://127.0.0.1:8088

  # Scripted searches
  printf 'cats\n2-8\n' | pulse watch --plain`,
	RunE: runWatch,
}

var watchPlain bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("theme", "", "color theme (default, monokai, dracula, nord)")
	watchCmd.Flags().Int("window", 0, "quiescence window in milliseconds")
	watchCmd.Flags().String("transport", "", "search transport (memory, http)")
	watchCmd.Flags().String("endpoint", "", "search endpoint for the http transport")
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print snapshot lines instead of the dashboard")
	_ = viper.BindPFlag("tui.theme", watchCmd.Flags().Lookup("theme"))
	_ = viper.BindPFlag("engine.window_ms", watchCmd.Flags().Lookup("window"))
	_ = viper.BindPFlag("search.transport", watchCmd.Flags().Lookup("transport"))
	_ = viper.BindPFlag("search.endpoint", watchCmd.Flags().Lookup("endpoint"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	interactive := !watchPlain && term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

	// The dashboard owns the terminal, so logs go to a file
	logDir := ""
	if interactive {
		logDir = config.DefaultLogDir()
	}
	logger := createLogger(cfg, logDir)
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, err := buildTransport(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create search transport: %w", err)
	}

	sources, err := buildSources(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create counter sources: %w", err)
	}
	defer sources.Close()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := searchd.Serve(ctx, cfg.Metrics.Addr, metrics.Handler(), logger.WithComponent("metrics")); err != nil {
				logger.Error("metrics endpoint stopped", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	var (
		sink aggregate.Sink
		run  func(context.Context, *controller.Controller) error
	)
	if interactive {
		app := tui.New(ctx, tui.WithTheme(cfg.TUI.Theme))
		sink = app
		run = func(ctx context.Context, c *controller.Controller) error {
			// Unblocks engine renders still waiting on the program
			defer app.Close()
			return app.Run(ctx, c)
		}
	} else {
		plain := tui.NewPlain(cmd.OutOrStdout())
		sink = plain
		run = func(ctx context.Context, c *controller.Controller) error { return plain.Run(ctx, cmd.InOrStdin(), c) }
	}

	opts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithWindow(cfg.Engine.Window()),
		controller.WithRetryPolicy(cfg.Search.Retry.Policy()),
	}
	for counter, src := range sources.sources {
		opts = append(opts, controller.WithSource(counter, src))
	}

	c := controller.New(sink, tr, opts...)
	defer c.Close()

	logger.Info("watch started",
		"transport", cfg.Search.Transport,
		"window", cfg.Engine.Window().String(),
		"interactive", interactive,
	)
	c.Start(ctx)

	return run(ctx, c)
}
