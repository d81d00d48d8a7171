package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kndwin/evolu/internal/patch"
	"github.com/kndwin/evolu/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DBPath string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SELECT once and print the rows",
		Long: `Execute a read-only SQL statement against the database and print the
result set. This is the one-shot form of what the watcher holds live:
the printed rows are exactly the snapshot a diff would start from.

Examples:
  evolu query --db app.db "SELECT id, title FROM todos ORDER BY id"
  evolu query --db app.db "SELECT count(*) AS n FROM todos" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *QueryOptions, sqlText string, cmd *cobra.Command) error {
	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", opts.DBPath), err)
	}
	defer s.Close()

	rows, err := s.Select(cmd.Context(), sqlText)
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}

	return printHeld(opts.RootOptions, cmd.OutOrStdout(), patch.Known(rows))
}
