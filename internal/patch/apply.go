package patch

// Applier binds a patch sequence once so it can be folded over one or more
// held-result snapshots. An Applier is stateless after construction and
// safe for concurrent use; each Apply produces a new value and never writes
// through the snapshot it receives.
type Applier struct {
	patches []Patch
}

// NewApplier binds a patch sequence. The sequence is copied so later caller
// mutation cannot change what gets applied.
func NewApplier(patches []Patch) *Applier {
	var bound []Patch
	if patches != nil {
		bound = make([]Patch, len(patches))
		copy(bound, patches)
	}
	return &Applier{patches: bound}
}

// Apply folds the bound patch sequence left-to-right over current.
//
// Per patch case:
//   - ReplaceAll: the result becomes its rows, unconditionally.
//   - ReplaceAt: no-op when the fold state is Unknown (an index patch
//     against no known result cannot be applied and is dropped); otherwise
//     a copy-on-write replacement of the row at the index. An index that
//     does not fit the current fold state is a reported contract violation,
//     not silent corruption.
//   - Purge: the result becomes Unknown, unconditionally.
func (a *Applier) Apply(current HeldResult) (HeldResult, error) {
	state := current
	for _, p := range a.patches {
		switch pt := p.(type) {
		case ReplaceAll:
			state = Known(pt.Rows)

		case ReplaceAt:
			rows, known := state.Rows()
			if !known {
				continue
			}
			if pt.Index < 0 || pt.Index >= len(rows) {
				return current, newOutOfRangeError(pt.Index, len(rows))
			}
			next := rows.Clone()
			next[pt.Index] = pt.Row
			state = Known(next)

		case Purge:
			state = Unknown()
		}
	}
	return state, nil
}

// Apply is the one-shot form: bind and fold in a single call.
func Apply(patches []Patch, current HeldResult) (HeldResult, error) {
	return NewApplier(patches).Apply(current)
}
