// internal/mail/actions.go
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/pkg/errors"

	"github.com/dhollis/mailkeeper/internal/types"
)

// Action tokens understood by the executor. move takes a target mailbox
// after the colon, e.g. "move:Archive".
const (
	ActionMarkRead   = "mark_read"
	ActionMarkUnread = "mark_unread"
	ActionMovePrefix = "move:"
)

// SupportedActions describes the action tokens for rule-file linting and
// usage output.
func SupportedActions() []string {
	return []string{ActionMarkRead, ActionMarkUnread, ActionMovePrefix + "<mailbox>"}
}

// RefResolver maps a stored email ID back to its provider reference.
type RefResolver interface {
	ProviderRef(ctx context.Context, id types.EmailID) (mailbox string, uid uint32, err error)
}

// Executor applies rule actions to messages on the IMAP provider.
type Executor struct {
	client   Client
	resolver RefResolver
	logger   *slog.Logger
}

// NewExecutor creates an executor over an authenticated client.
func NewExecutor(client Client, resolver RefResolver, logger *slog.Logger) (*Executor, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if resolver == nil {
		return nil, errors.New("resolver cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{client: client, resolver: resolver, logger: logger}, nil
}

// ValidateAction checks that an action token is one the executor understands.
// Wraps types.ErrUnsupportedAction on failure.
func ValidateAction(action types.ActionSpec) error {
	switch {
	case action == ActionMarkRead, action == ActionMarkUnread:
		return nil
	case strings.HasPrefix(string(action), ActionMovePrefix):
		if strings.TrimSpace(strings.TrimPrefix(string(action), ActionMovePrefix)) == "" {
			return fmt.Errorf("%w: move action needs a target mailbox", types.ErrUnsupportedAction)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", types.ErrUnsupportedAction, action)
	}
}

// ValidateAction implements the processor's action validation hook.
func (e *Executor) ValidateAction(action types.ActionSpec) error {
	return ValidateAction(action)
}

// PerformActions applies every action to the email identified by id. Stops at
// the first failing action.
func (e *Executor) PerformActions(ctx context.Context, id types.EmailID, actions []types.ActionSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mailbox, uid, err := e.resolver.ProviderRef(ctx, id)
	if err != nil {
		return err
	}

	if _, err := e.client.Select(mailbox, false); err != nil {
		return errors.Wrapf(err, "failed to select mailbox %s", mailbox)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	for _, action := range actions {
		if err := e.applyAction(seqSet, action); err != nil {
			return err
		}
		e.logger.Info("applied action", "id", id, "action", action, "mailbox", mailbox, "uid", uid)
	}

	return nil
}

func (e *Executor) applyAction(seqSet *imap.SeqSet, action types.ActionSpec) error {
	switch {
	case action == ActionMarkRead:
		return e.storeFlags(seqSet, imap.AddFlags)
	case action == ActionMarkUnread:
		return e.storeFlags(seqSet, imap.RemoveFlags)
	case strings.HasPrefix(string(action), ActionMovePrefix):
		target := strings.TrimSpace(strings.TrimPrefix(string(action), ActionMovePrefix))
		if target == "" {
			return fmt.Errorf("%w: move action needs a target mailbox", types.ErrUnsupportedAction)
		}
		return e.copyTo(seqSet, target)
	default:
		return fmt.Errorf("%w: %s", types.ErrUnsupportedAction, action)
	}
}

// storeFlags adds or removes \Seen on the addressed message. Silent store
// (no untagged FETCH responses wanted back).
func (e *Executor) storeFlags(seqSet *imap.SeqSet, op imap.FlagsOp) error {
	item := imap.FormatFlagsOp(op, true)
	if err := e.client.UidStore(seqSet, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return errors.Wrap(err, "failed to store flags")
	}
	return nil
}

// copyTo copies the addressed message into target, creating the mailbox if
// missing. The original is left in place; no expunge is issued.
func (e *Executor) copyTo(seqSet *imap.SeqSet, target string) error {
	exists, err := e.mailboxExists(target)
	if err != nil {
		return err
	}
	if !exists {
		if err := e.client.Create(target); err != nil {
			return errors.Wrapf(err, "failed to create mailbox %s", target)
		}
		e.logger.Info("created mailbox", "mailbox", target)
	}

	if err := e.client.UidCopy(seqSet, target); err != nil {
		return errors.Wrapf(err, "failed to copy message to %s", target)
	}
	return nil
}

func (e *Executor) mailboxExists(name string) (bool, error) {
	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- e.client.List("", name, mailboxes)
	}()

	found := false
	for range mailboxes {
		found = true
	}
	if err := <-done; err != nil {
		return false, errors.Wrapf(err, "failed to list mailbox %s", name)
	}
	return found, nil
}
