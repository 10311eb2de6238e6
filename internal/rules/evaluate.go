// internal/rules/evaluate.go
package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/dhollis/mailkeeper/internal/types"
)

/*
 * Condition evaluation against a single email.
 *
 * Dispatches on the condition's field:
 *   - received_at: day-window comparison against an injected "now"
 *   - is_read: boolean equality against the literal "true"/"false"
 *   - sender/subject/body: case-insensitive text comparison
 *
 * Error policy: validation failures propagate as errors and abort the run.
 * Every runtime mismatch (malformed timestamp, non-integer day count,
 * predicate that makes no sense for the field) degrades to false for that
 * single condition/email pair, never aborting the batch.
 *
 * Determinism: the caller supplies now, so evaluation is a pure function of
 * (email, condition, now). Tests inject a fixed clock; the CLI passes
 * time.Now().UTC().
 */

// Timestamp layouts accepted for Email.ReceivedAt. RFC 3339 first; the
// offset-free fallback is read as UTC.
var receivedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Evaluate reports whether the email matches the condition at the given
// instant. The condition is validated first; an invalid condition returns a
// non-nil error wrapping types.ErrInvalidCondition, never a false result.
func Evaluate(email types.Email, cond types.Condition, now time.Time) (bool, error) {
	if err := Validate(cond); err != nil {
		return false, err
	}

	switch cond.Field {
	case types.FieldReceivedAt:
		return evaluateDate(email.ReceivedAt, cond.Predicate, cond.Value, now), nil
	case types.FieldIsRead:
		return evaluateBool(email.IsRead, cond.Predicate, cond.Value), nil
	default:
		value, ok := email.TextField(cond.Field)
		if !ok {
			return false, nil
		}
		return evaluateText(value, cond.Predicate, cond.Value), nil
	}
}

// evaluateDate compares the email's timestamp against a day-count window.
// less_than_days: received strictly after now-N days (more recent than N days).
// greater_than_days: received strictly before now-N days (older than N days).
// Malformed timestamps or non-integer day counts evaluate to false.
func evaluateDate(receivedAt, predicate, value string, now time.Time) bool {
	received, ok := parseReceivedAt(receivedAt)
	if !ok {
		return false
	}
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return false
	}

	cutoff := now.AddDate(0, 0, -days)

	switch predicate {
	case types.PredicateLessThanDays:
		return received.After(cutoff)
	case types.PredicateGreaterThanDays:
		return received.Before(cutoff)
	default:
		return false
	}
}

// evaluateBool compares the email's read state against the condition value.
// The value parses case-insensitively: "true" means read, anything else
// means unread. Non-equality predicates on a boolean field evaluate to false.
func evaluateBool(isRead bool, predicate, value string) bool {
	expected := strings.EqualFold(strings.TrimSpace(value), "true")

	switch predicate {
	case types.PredicateEquals:
		return isRead == expected
	case types.PredicateNotEquals:
		return isRead != expected
	default:
		return false
	}
}

// evaluateText compares two strings case-insensitively.
// Day-window predicates on a text field evaluate to false.
func evaluateText(emailValue, predicate, value string) bool {
	emailLower := strings.ToLower(emailValue)
	valueLower := strings.ToLower(value)

	switch predicate {
	case types.PredicateContains:
		return strings.Contains(emailLower, valueLower)
	case types.PredicateNotContains:
		return !strings.Contains(emailLower, valueLower)
	case types.PredicateEquals:
		return emailLower == valueLower
	case types.PredicateNotEquals:
		return emailLower != valueLower
	default:
		return false
	}
}

// parseReceivedAt parses an ISO-8601 timestamp string, trying each accepted
// layout in order.
func parseReceivedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range receivedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == "2006-01-02T15:04:05" {
				t = t.UTC()
			}
			return t, true
		}
	}
	return time.Time{}, false
}
