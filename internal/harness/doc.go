// Package harness runs declarative scenarios against the patch engine.
//
// A scenario is a YAML file describing a sequence of result snapshots as a
// holder would observe them. The runner starts from Unknown, feeds each
// snapshot through Diff, folds the resulting patches over the held result,
// and records a trace of what the engine emitted. Steps can assert on the
// emitted patch ops inline, and whole traces golden-compare against
// testdata fixtures via goldie.
//
// Scenarios double as executable documentation of the collapse policy:
// each golden file shows exactly which shapes produce point patches and
// which degrade to a full replacement.
package harness
