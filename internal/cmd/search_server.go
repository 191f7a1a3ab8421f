package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/pulse/internal/config"
	"github.com/Iron-Ham/pulse/internal/searchd"
)

var searchServerCmd = &cobra.Command{
	Use:   "search-server",
	Short: "Serve the search index over HTTP",
	Long: `Serve the in-memory search index for the http transport.

The index is loaded from search.corpus (or the built-in sample) and honours
search.failure_rate and search.latency_ms, which makes it a convenient way
to watch retries against a flaky backend. Prometheus metrics are served on
/metrics.

Example:
  pulse search-server --addr :8088
  pulse watch --transport http --endpoint http://127.0.0.1:8088`,
	RunE: runSearchServer,
}

func init() {
	rootCmd.AddCommand(searchServerCmd)

	searchServerCmd.Flags().String("addr", "", "listen address (default :8088)")
	searchServerCmd.Flags().String("corpus", "", "YAML corpus file (default: built-in sample)")
	searchServerCmd.Flags().Float64("failure-rate", 0, "fraction of searches that fail")
	_ = viper.BindPFlag("server.addr", searchServerCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("search.corpus", searchServerCmd.Flags().Lookup("corpus"))
	_ = viper.BindPFlag("search.failure_rate", searchServerCmd.Flags().Lookup("failure-rate"))
}

func runSearchServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := createLogger(cfg, "")
	defer func() { _ = logger.Close() }()

	idx, err := buildIndex(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("search server starting",
		"addr", cfg.Server.Addr,
		"items", idx.Len(),
		"failure_rate", cfg.Search.FailureRate,
	)
	return searchd.Serve(ctx, cfg.Server.Addr, searchd.NewRouter(idx, searchd.WithLogger(logger)), logger)
}
