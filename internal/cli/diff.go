package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kndwin/evolu/internal/patch"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <previous.json> <next.json>",
		Short: "Diff two result files into a patch sequence",
		Long: `Compute the patch sequence that turns the previous result into the next.

Both files hold a JSON array of row objects. Pass - as the previous result
for a query that has never produced a snapshot; the diff is then a full
replacement. The next result must be a real file: diffing always starts
from a freshly computed snapshot.

Examples:
  evolu diff before.json after.json
  evolu diff - first.json
  evolu diff before.json after.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDiff(opts *RootOptions, prevPath, nextPath string, cmd *cobra.Command) error {
	previous, err := LoadHeldResult(prevPath)
	if err != nil {
		return err
	}
	next, err := LoadResultSet(nextPath)
	if err != nil {
		return err
	}

	patches := patch.Diff(previous, next)
	return printPatches(opts, cmd.OutOrStdout(), patches)
}

// printPatches writes a patch sequence: the wire JSON in json format, a
// one-line summary per patch in text format.
func printPatches(opts *RootOptions, w io.Writer, patches []patch.Patch) error {
	if opts.Format == "json" {
		data, err := patch.EncodeSequence(patches)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if len(patches) == 0 {
		fmt.Fprintln(w, "no change")
		return nil
	}
	for _, p := range patches {
		switch pt := p.(type) {
		case patch.ReplaceAll:
			fmt.Fprintf(w, "replaceAll (%d rows)\n", len(pt.Rows))
		case patch.ReplaceAt:
			fmt.Fprintf(w, "replaceAt [%d]\n", pt.Index)
		case patch.Purge:
			fmt.Fprintln(w, "purge")
		}
	}
	return nil
}
