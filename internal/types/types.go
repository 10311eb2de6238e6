// Package types provides domain models shared across MailKeeper components.
//
// Zero-dependency design: types.go, rules.go, and errors.go use only the
// standard library so the rule engine can be consumed without pulling in
// provider or storage dependencies. ID utilities in ids.go import uuid but
// are isolated for selective inclusion.
package types

// EmailID identifies a stored email. Normally the RFC 5322 Message-ID of the
// fetched message; a generated UUID when the message carries none.
// String alias enables type safety while maintaining JSON string serialization.
type EmailID string

// Email is an immutable snapshot of one message's metadata as fetched from
// the provider. The rule engine reads it and never mutates it.
type Email struct {
	ID         EmailID  `json:"id" db:"id"`
	Sender     string   `json:"sender" db:"sender"`
	Subject    string   `json:"subject" db:"subject"`
	Body       string   `json:"body" db:"body"`
	ReceivedAt string   `json:"received_at" db:"received_at"` // ISO-8601, timezone-aware
	Labels     []string `json:"labels,omitempty" db:"-"`
	IsRead     bool     `json:"is_read" db:"is_read"`
}

// Email fields addressable from rule conditions.
const (
	FieldSender     = "sender"
	FieldSubject    = "subject"
	FieldBody       = "body"
	FieldReceivedAt = "received_at"
	FieldIsRead     = "is_read"
)

// Predicates supported by rule conditions.
const (
	PredicateContains        = "contains"
	PredicateNotContains     = "not_contains"
	PredicateEquals          = "equals"
	PredicateNotEquals       = "not_equals"
	PredicateLessThanDays    = "less_than_days"
	PredicateGreaterThanDays = "greater_than_days"
)

// SupportedFields is the fixed enumeration of fields a condition may target.
// Read-only table; never mutated at runtime.
var SupportedFields = map[string]bool{
	FieldSender:     true,
	FieldSubject:    true,
	FieldBody:       true,
	FieldReceivedAt: true,
	FieldIsRead:     true,
}

// SupportedPredicates is the fixed enumeration of condition predicates.
// Read-only table; never mutated at runtime.
var SupportedPredicates = map[string]bool{
	PredicateContains:        true,
	PredicateNotContains:     true,
	PredicateEquals:          true,
	PredicateNotEquals:       true,
	PredicateLessThanDays:    true,
	PredicateGreaterThanDays: true,
}

// TextField returns the email's value for a text-addressable field.
// Returns ok=false for fields without a string representation (received_at
// and is_read dispatch through their own evaluation branches).
func (e Email) TextField(field string) (string, bool) {
	switch field {
	case FieldSender:
		return e.Sender, true
	case FieldSubject:
		return e.Subject, true
	case FieldBody:
		return e.Body, true
	default:
		return "", false
	}
}
