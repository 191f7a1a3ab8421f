package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pulse/internal/config"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/tui/styles"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show pulse.log",
	Long: `Show the entries of pulse.log, including rotated backups, oldest first.

The log is read from logging.dir, or from the dashboard's log directory
when logging.dir is not set.`,
	Example: `  pulse logs -n 20 --level warn
  pulse logs --component search --since 10m
  pulse logs --grep "*retry*"`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail      int
	logsLevel     string
	logsComponent string
	logsSince     time.Duration
	logsGrep      string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component (aggregate, search, source, ...)")
	logsCmd.Flags().DurationVar(&logsSince, "since", 0, "Show entries newer than this (e.g. 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter messages by glob pattern")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	dir := cfg.Logging.Dir
	if dir == "" {
		dir = config.DefaultLogDir()
	}

	filter := logging.Filter{Level: logsLevel, Component: logsComponent}
	if logsSince > 0 {
		filter.Since = time.Now().Add(-logsSince)
	}
	var pattern glob.Glob
	if logsGrep != "" {
		if pattern, err = glob.Compile(logsGrep); err != nil {
			return fmt.Errorf("invalid --grep pattern: %w", err)
		}
	}

	entries, err := logging.ReadLog(dir)
	if err != nil {
		return err
	}

	var shown []logging.Entry
	for _, e := range entries {
		if !filter.Match(e) || (pattern != nil && !pattern.Match(e.Message)) {
			continue
		}
		shown = append(shown, e)
	}
	if logsTail > 0 && len(shown) > logsTail {
		shown = shown[len(shown)-logsTail:]
	}

	out := cmd.OutOrStdout()
	ls := newLogStyles()
	for _, e := range shown {
		writeEntry(out, ls, e)
	}
	return nil
}

type logStyles struct {
	time   lipgloss.Style
	levels map[string]lipgloss.Style
	key    lipgloss.Style
}

func newLogStyles() logStyles {
	p := styles.DefaultPalette()
	return logStyles{
		time: lipgloss.NewStyle().Foreground(p.Muted),
		levels: map[string]lipgloss.Style{
			logging.LevelDebug: lipgloss.NewStyle().Foreground(p.Muted),
			logging.LevelInfo:  lipgloss.NewStyle().Foreground(p.Secondary),
			logging.LevelWarn:  lipgloss.NewStyle().Foreground(p.Warning),
			logging.LevelError: lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		},
		key: lipgloss.NewStyle().Foreground(p.Primary),
	}
}

func writeEntry(w io.Writer, ls logStyles, e logging.Entry) {
	var sb strings.Builder

	sb.WriteString(ls.time.Render("[" + e.Time.Local().Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	level := strings.ToUpper(e.Level)
	sb.WriteString(ls.levels[level].Render(fmt.Sprintf("[%-5s]", level)))
	sb.WriteString(" ")
	sb.WriteString(e.Message)

	if e.Component != "" {
		sb.WriteString(" " + ls.key.Render("component=") + e.Component)
	}
	if e.AttemptID != 0 {
		sb.WriteString(" " + ls.key.Render("attempt_id=") + fmt.Sprint(e.AttemptID))
	}
	for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
		sb.WriteString(" " + ls.key.Render(k+"=") + fmt.Sprint(e.Attrs[k]))
	}

	fmt.Fprintln(w, sb.String())
}
