package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kndwin/evolu/internal/patch"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <patches.json> <current.json>",
		Short: "Fold a patch sequence over a held result",
		Long: `Apply a patch sequence to a held result and print what a holder would
now see. The patch file holds the wire JSON array a diff produced; the
result file holds a JSON array of row objects, or - for a holder whose
result is still unknown.

A replaceAt whose index is out of range for the held result rejects the
whole sequence and exits 1: it signals that the holder's copy has drifted
from the producer's.

Examples:
  evolu apply patches.json before.json
  evolu apply patches.json -
  evolu apply patches.json before.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runApply(opts *RootOptions, patchPath, resultPath string, cmd *cobra.Command) error {
	patches, err := LoadPatchSequence(patchPath)
	if err != nil {
		return err
	}
	current, err := LoadHeldResult(resultPath)
	if err != nil {
		return err
	}

	updated, err := patch.Apply(patches, current)
	if err != nil {
		return WrapExitError(ExitFailure, "patch sequence rejected", err)
	}

	return printHeld(opts, cmd.OutOrStdout(), updated)
}

// printHeld writes a held result: rows as a JSON array, an unknown result
// as null (json) or "unknown" (text).
func printHeld(opts *RootOptions, w io.Writer, held patch.HeldResult) error {
	rows, known := held.Rows()

	if opts.Format == "json" {
		if !known {
			fmt.Fprintln(w, "null")
			return nil
		}
		data, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if !known {
		fmt.Fprintln(w, "unknown")
		return nil
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "empty result")
		return nil
	}
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	}
	return nil
}
