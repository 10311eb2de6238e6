// Package processor orchestrates a rule run: load the ruleset, evaluate it
// against stored emails, and execute the configured actions on every match.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhollis/mailkeeper/internal/rules"
	"github.com/dhollis/mailkeeper/internal/types"
)

// EmailSource provides the stored emails a rule run evaluates.
type EmailSource interface {
	GetAllEmails(ctx context.Context) ([]types.Email, error)
}

// ActionExecutor validates and applies rule actions to matched emails.
type ActionExecutor interface {
	ValidateAction(action types.ActionSpec) error
	PerformActions(ctx context.Context, id types.EmailID, actions []types.ActionSpec) error
}

// Processor runs rulesets against stored emails.
type Processor struct {
	source   EmailSource
	executor ActionExecutor
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the time source used for date predicates.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// New creates a processor over an email source and an action executor.
func New(source EmailSource, executor ActionExecutor, logger *slog.Logger, opts ...Option) (*Processor, error) {
	if source == nil {
		return nil, fmt.Errorf("email source cannot be nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("action executor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Processor{
		source:   source,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result summarizes one rule run.
type Result struct {
	Evaluated int
	Matched   int
	Failed    int
}

// ApplyRules loads the ruleset at path and applies it to every stored email.
// Malformed documents and invalid conditions or actions abort the run before
// any action fires. A failing action on one matched email is logged and the
// run continues with the rest.
func (p *Processor) ApplyRules(ctx context.Context, path string) (Result, error) {
	ruleset, err := rules.LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	return p.Apply(ctx, ruleset)
}

// Apply runs an already-loaded ruleset.
func (p *Processor) Apply(ctx context.Context, ruleset types.Ruleset) (Result, error) {
	// Fail fast on a bad document; no email should see a half-valid ruleset
	for _, cond := range ruleset.Rules {
		if err := rules.Validate(cond); err != nil {
			return Result{}, err
		}
	}
	for _, action := range ruleset.Actions {
		if err := p.executor.ValidateAction(action); err != nil {
			return Result{}, err
		}
	}

	emails, err := p.source.GetAllEmails(ctx)
	if err != nil {
		return Result{}, err
	}

	now := p.now().UTC()
	matches, err := rules.FindMatches(emails, ruleset.Rules, ruleset.Predicate, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{Evaluated: len(emails), Matched: len(matches)}
	p.logger.Info("evaluated ruleset",
		"predicate", ruleset.Predicate,
		"conditions", len(ruleset.Rules),
		"emails", len(emails),
		"matches", len(matches),
	)

	for _, email := range matches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := p.executor.PerformActions(ctx, email.ID, ruleset.Actions); err != nil {
			result.Failed++
			p.logger.Error("actions failed for email",
				"id", email.ID,
				"subject", email.Subject,
				"error", err,
			)
			continue
		}
		p.logger.Info("applied actions", "id", email.ID, "actions", len(ruleset.Actions))
	}

	return result, nil
}
