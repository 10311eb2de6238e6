package types

import "errors"

// Sentinel errors for MailKeeper operations.
var (
	// ErrMalformedRuleset indicates the ruleset document is structurally
	// invalid: unparsable, not a JSON object, or missing the rules/actions
	// keys. Fatal to a run; no partial application.
	ErrMalformedRuleset = errors.New("malformed ruleset")

	// ErrInvalidCondition indicates a condition failed structural or
	// enumeration validation. Fatal to a run when raised during the
	// pre-validation pass or mid-evaluation.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrUnsupportedAction indicates an action token the executor does not
	// recognize.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrEmailNotFound indicates an email ID with no stored record.
	ErrEmailNotFound = errors.New("email not found")
)
