// internal/types/rules.go
package types

/*
 * Domain types for rule evaluation.
 *
 * Provides Condition, Ruleset, PredicateType, and ActionSpec used by
 * internal/rules for validation and evaluation. These types are wire-format
 * agnostic apart from JSON tags matching the ruleset document shape.
 *
 * Key types:
 *   - Condition: single field/predicate/value comparison
 *   - Ruleset: complete rule document (combinator + conditions + actions)
 *   - PredicateType: ALL (AND) or ANY (OR) combinator
 *   - ActionSpec: opaque action token, pass-through to the executor
 */

// PredicateType selects how condition results combine across one email.
type PredicateType string

const (
	// PredicateAll matches when every condition matches (vacuously true
	// with zero conditions).
	PredicateAll PredicateType = "ALL"

	// PredicateAny matches when at least one condition matches (vacuously
	// false with zero conditions).
	PredicateAny PredicateType = "ANY"
)

// Condition is a single comparison in a ruleset.
// Value is always carried as a string; the evaluator interprets it per
// field (day count for received_at, boolean literal for is_read).
type Condition struct {
	Field     string `json:"field"`
	Predicate string `json:"predicate"`
	Value     string `json:"value"`
}

// ActionSpec is an opaque action token consumed by the action executor.
// The rule engine passes it through without interpretation.
type ActionSpec string

// Ruleset is one loaded rule document. Loaded once per run, validated
// eagerly, discarded after the run; no rule state is persisted.
type Ruleset struct {
	Predicate PredicateType `json:"predicate"`
	Rules     []Condition   `json:"rules"`
	Actions   []ActionSpec  `json:"actions"`
}
