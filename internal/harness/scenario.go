package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kndwin/evolu/internal/row"
)

// Scenario defines a conformance scenario for the patch engine.
// The runner replays its steps against a held result that starts Unknown.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are stored
	// under testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps is the ordered list of observations to replay.
	Steps []Step `yaml:"steps"`
}

// Step is one observation: either the next result snapshot (rows), or an
// explicit purge by the holder. Exactly one of the two must be set.
type Step struct {
	// Rows is the next computed result. An empty list is a real, known
	// empty result - distinct from a purge.
	Rows *[]map[string]any `yaml:"rows,omitempty"`

	// Purge invalidates the held result.
	Purge bool `yaml:"purge,omitempty"`

	// Expect optionally asserts on what the engine emitted for this step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause asserts on the patch sequence a step produced.
type ExpectClause struct {
	// Ops is the exact sequence of patch ops expected, e.g.
	// ["replaceAt", "replaceAt"] or [] for a clean refresh.
	Ops []string `yaml:"ops"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like
	// "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		hasRows := step.Rows != nil
		if hasRows == step.Purge {
			return fmt.Errorf("steps[%d]: exactly one of rows or purge is required", i)
		}
		if hasRows {
			for j, r := range *step.Rows {
				if _, err := convertRow(r); err != nil {
					return fmt.Errorf("steps[%d].rows[%d]: %w", i, j, err)
				}
			}
		}
	}

	return nil
}

// convertRow converts a YAML mapping into a row.Row.
func convertRow(m map[string]any) (row.Row, error) {
	r := make(row.Row, len(m))
	for k, v := range m {
		val, err := convertValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		r[k] = val
	}
	return r, nil
}

// convertValue maps YAML scalars onto row values. Booleans are rejected:
// SQLite has no boolean storage class, scenarios must use 0/1.
func convertValue(v any) (row.Value, error) {
	switch val := v.(type) {
	case nil:
		return row.Null{}, nil
	case int:
		return row.Integer(int64(val)), nil
	case int64:
		return row.Integer(val), nil
	case float64:
		return row.Real(val), nil
	case string:
		return row.Text(val), nil
	case bool:
		return nil, fmt.Errorf("booleans are not representable, use 0 or 1")
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// snapshot materializes a step's rows as a ResultSet.
// Only call after validateScenario has accepted the scenario.
func (s Step) snapshot() (row.ResultSet, error) {
	rows := row.ResultSet{}
	if s.Rows == nil {
		return rows, nil
	}
	for _, m := range *s.Rows {
		r, err := convertRow(m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}
