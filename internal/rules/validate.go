// internal/rules/validate.go
package rules

import (
	"fmt"

	"github.com/dhollis/mailkeeper/internal/types"
)

/*
 * Condition validation.
 *
 * Structural and enumeration checks for a single condition: required keys
 * present, field and predicate drawn from the fixed tables in internal/types,
 * value non-empty.
 *
 * Validation is deliberately loose about field/predicate compatibility:
 * less_than_days on subject passes validation and simply evaluates to false
 * at evaluation time. Tightening this to a configuration error was
 * considered and rejected to keep existing rule documents working.
 */

// Validate checks a condition's structure against the supported field and
// predicate enumerations. All returned errors wrap types.ErrInvalidCondition.
// Pure function; no side effects.
func Validate(cond types.Condition) error {
	if cond.Field == "" {
		return fmt.Errorf("%w: missing required key %q", types.ErrInvalidCondition, "field")
	}
	if cond.Predicate == "" {
		return fmt.Errorf("%w: missing required key %q", types.ErrInvalidCondition, "predicate")
	}
	if !types.SupportedFields[cond.Field] {
		return fmt.Errorf("%w: unsupported field %q", types.ErrInvalidCondition, cond.Field)
	}
	if !types.SupportedPredicates[cond.Predicate] {
		return fmt.Errorf("%w: unsupported predicate %q", types.ErrInvalidCondition, cond.Predicate)
	}
	if cond.Value == "" {
		return fmt.Errorf("%w: value cannot be empty", types.ErrInvalidCondition)
	}
	return nil
}
