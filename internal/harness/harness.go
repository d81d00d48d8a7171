package harness

import (
	"fmt"

	"github.com/kndwin/evolu/internal/patch"
)

// TraceStep records what the engine emitted for one scenario step.
type TraceStep struct {
	Step    int
	Ops     []string
	Patches []patch.Patch
	Held    patch.HeldResult
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario *Scenario
	Trace    []TraceStep
	Final    patch.HeldResult
}

// Run replays a scenario from an Unknown held result, diffing each snapshot
// step and folding the emitted patches. Inline expectations are checked as
// it goes; the first violation fails the run.
func Run(scenario *Scenario) (*Result, error) {
	held := patch.Unknown()
	result := &Result{Scenario: scenario}

	for i, step := range scenario.Steps {
		var patches []patch.Patch
		if step.Purge {
			patches = []patch.Patch{patch.Purge{}}
		} else {
			next, err := step.snapshot()
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			patches = patch.Diff(held, next)
		}

		updated, err := patch.Apply(patches, held)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: apply: %w", i, err)
		}
		held = updated

		ops := opNames(patches)
		if step.Expect != nil {
			if err := checkOps(i, step.Expect.Ops, ops); err != nil {
				return nil, err
			}
		}

		result.Trace = append(result.Trace, TraceStep{
			Step:    i,
			Ops:     ops,
			Patches: patches,
			Held:    held,
		})
	}

	result.Final = held
	return result, nil
}

// opNames lists the wire op of each patch, in order.
func opNames(patches []patch.Patch) []string {
	ops := make([]string, len(patches))
	for i, p := range patches {
		switch p.(type) {
		case patch.ReplaceAll:
			ops[i] = "replaceAll"
		case patch.ReplaceAt:
			ops[i] = "replaceAt"
		case patch.Purge:
			ops[i] = "purge"
		}
	}
	return ops
}

func checkOps(step int, want, got []string) error {
	if len(want) != len(got) {
		return fmt.Errorf("steps[%d]: expected ops %v, got %v", step, want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("steps[%d]: expected ops %v, got %v", step, want, got)
		}
	}
	return nil
}

// toCanonicalMap converts a Result to plain maps/lists for canonical JSON
// serialization, since row.MarshalCanonical only handles row types and
// primitives.
func (r *Result) toCanonicalMap() map[string]any {
	steps := make([]any, len(r.Trace))
	for i, ts := range r.Trace {
		stepMap := map[string]any{
			"step":    ts.Step,
			"ops":     toAnyList(ts.Ops),
			"patches": patchesToCanonical(ts.Patches),
			"held":    heldToCanonical(ts.Held),
		}
		steps[i] = stepMap
	}

	return map[string]any{
		"scenario_name": r.Scenario.Name,
		"trace":         steps,
	}
}

func toAnyList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func patchesToCanonical(patches []patch.Patch) []any {
	out := make([]any, len(patches))
	for i, p := range patches {
		switch pt := p.(type) {
		case patch.ReplaceAll:
			out[i] = map[string]any{"op": "replaceAll", "rows": pt.Rows}
		case patch.ReplaceAt:
			out[i] = map[string]any{"op": "replaceAt", "index": pt.Index, "row": pt.Row}
		case patch.Purge:
			out[i] = map[string]any{"op": "purge"}
		}
	}
	return out
}

func heldToCanonical(h patch.HeldResult) any {
	rows, known := h.Rows()
	if !known {
		return "unknown"
	}
	return rows
}
