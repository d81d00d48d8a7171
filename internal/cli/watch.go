package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kndwin/evolu/internal/live"
	"github.com/kndwin/evolu/internal/patch"
	"github.com/kndwin/evolu/internal/queryset"
	"github.com/kndwin/evolu/internal/store"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	DBPath      string
	QueriesPath string
	Ticks       int
	IntervalMS  int64
}

// patchEvent is one line of watch output in json format.
type patchEvent struct {
	Query   string          `json:"query"`
	Patches json.RawMessage `json:"patches"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a query set and stream patches",
		Long: `Run the live watcher over a CUE query set: every query starts unknown,
so the first refresh streams a full replacement, and later refreshes
stream only what changed. One line is emitted per query per refresh that
produced patches; clean refreshes are silent.

With --ticks the watcher refreshes that many times and exits, which is
useful for scripting. Without it the watcher polls until interrupted.

Examples:
  evolu watch --db app.db --queries queries.cue
  evolu watch --db app.db --queries queries.cue --ticks 1 --format json
  evolu watch --db app.db --queries queries.cue --interval 250`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringVar(&opts.QueriesPath, "queries", "", "path to the CUE query set (required)")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "refresh this many times then exit (0 = run until interrupted)")
	cmd.Flags().Int64Var(&opts.IntervalMS, "interval", 1000, "default polling interval in milliseconds")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("queries")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	defs, err := queryset.LoadFile(opts.QueriesPath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("query set %s", opts.QueriesPath), err)
	}

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", opts.DBPath), err)
	}
	defer s.Close()

	watcher := live.NewWatcher(s, defs,
		live.WithInterval(time.Duration(opts.IntervalMS)*time.Millisecond))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var emitErr error
	for _, def := range defs {
		if _, _, err := watcher.Subscribe(def.Name, func(n live.Notification) {
			if err := emitNotification(opts.RootOptions, cmd, n); err != nil && emitErr == nil {
				emitErr = err
			}
		}); err != nil {
			return WrapExitError(ExitCommandError, "subscribe", err)
		}
		formatter.VerboseLog("watching %s", def.Name)
	}

	if opts.Ticks > 0 {
		for i := 0; i < opts.Ticks; i++ {
			if i > 0 {
				time.Sleep(time.Duration(opts.IntervalMS) * time.Millisecond)
			}
			if err := watcher.RefreshAll(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "refresh", err)
			}
		}
		return emitErr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.RefreshAll(ctx); err != nil {
		return WrapExitError(ExitFailure, "refresh", err)
	}
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return emitErr
}

// emitNotification writes one refresh's patches for one query.
func emitNotification(opts *RootOptions, cmd *cobra.Command, n live.Notification) error {
	w := cmd.OutOrStdout()

	if opts.Format == "json" {
		wire, err := patch.EncodeSequence(n.Patches)
		if err != nil {
			return err
		}
		return json.NewEncoder(w).Encode(patchEvent{Query: n.Query, Patches: wire})
	}

	fmt.Fprintf(w, "%s:\n", n.Query)
	return printPatches(opts, w, n.Patches)
}
