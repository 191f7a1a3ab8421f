package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/term"
)

var parseCmd = &cobra.Command{
	Use:   "parse <input>...",
	Short: "Show how search input is interpreted",
	Long: `Parse search input the way the search box does and print the resulting
term, or the reason it is rejected.

Arguments are joined with spaces, so quoting is optional.

Examples:
  pulse parse cats
  pulse parse 2-8
  pulse parse 5 2     # range order is rejected`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	t, err := term.Parse(raw)
	if err != nil {
		var rej *term.Rejection
		if errors.As(err, &rej) {
			fmt.Fprintf(out, "rejected (%s): %s\n", rej.Reason, rej.Message())
			return err
		}
		return err
	}

	fmt.Fprintf(out, "%s %s\n", t.Kind(), t)
	return nil
}
