package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kndwin/evolu/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	DBPath string
}

// ExecResult is the payload reported after a mutation.
type ExecResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Apply a mutation to the database",
		Long: `Execute a write statement (INSERT, UPDATE, DELETE, DDL) against the
database and report the number of rows affected. A watcher observing the
same database picks the change up on its next refresh.

Examples:
  evolu exec --db app.db "INSERT INTO todos (title) VALUES ('buy milk')"
  evolu exec --db app.db "UPDATE todos SET done = 1 WHERE id = 3"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(opts *ExecOptions, sqlText string, cmd *cobra.Command) error {
	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", opts.DBPath), err)
	}
	defer s.Close()

	affected, err := s.Exec(cmd.Context(), sqlText)
	if err != nil {
		return WrapExitError(ExitFailure, "exec failed", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(ExecResult{RowsAffected: affected})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d row(s) affected\n", affected)
	return nil
}
