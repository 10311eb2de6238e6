// internal/rules/match.go
package rules

import (
	"time"

	"github.com/dhollis/mailkeeper/internal/types"
)

/*
 * Ruleset combinator.
 *
 * Evaluates every condition against every email and combines per-email
 * results under ALL (AND) or ANY (OR) semantics. Output preserves input
 * email ordering. No short-circuit: evaluation is side-effect-free and the
 * email set is small enough that exhaustive evaluation keeps the code
 * matching the per-condition results one-to-one.
 *
 * An unknown predicate type matches nothing. The loader passes unknown
 * values through unchanged, so a typo in the document yields an empty match
 * set rather than a load failure.
 */

// FindMatches returns the emails matching the conditions under the given
// predicate type, preserving input ordering. A validation error from any
// condition aborts the entire run; it does not exclude just that email.
func FindMatches(emails []types.Email, conds []types.Condition, predicateType types.PredicateType, now time.Time) ([]types.Email, error) {
	matched := make([]types.Email, 0, len(emails))

	for _, email := range emails {
		results := make([]bool, 0, len(conds))
		for _, cond := range conds {
			ok, err := Evaluate(email, cond, now)
			if err != nil {
				return nil, err
			}
			results = append(results, ok)
		}

		switch predicateType {
		case types.PredicateAll:
			if allMatch(results) {
				matched = append(matched, email)
			}
		case types.PredicateAny:
			if anyMatch(results) {
				matched = append(matched, email)
			}
		}
	}

	return matched, nil
}

// allMatch reports whether every result is true. Vacuously true for an empty slice.
func allMatch(results []bool) bool {
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

// anyMatch reports whether at least one result is true. Vacuously false for an
// empty slice.
func anyMatch(results []bool) bool {
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}
