// Package store persists fetched email snapshots and serves them back to the
// rule engine. Implements the processor.EmailSource collaborator.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dhollis/mailkeeper/internal/core/db"
	"github.com/dhollis/mailkeeper/internal/types"
)

// Record is one stored email: the engine-visible snapshot plus the provider
// reference (mailbox + IMAP UID) the action executor needs to address the
// message upstream.
type Record struct {
	Email   types.Email
	Mailbox string
	UID     uint32
}

// Store reads and writes email snapshots through named queries.
type Store struct {
	queries *db.Queries
	logger  *slog.Logger
}

// New creates a store over loaded queries.
func New(queries *db.Queries, logger *slog.Logger) (*Store, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{queries: queries, logger: logger}, nil
}

// emailRow mirrors the emails table for sqlx scanning.
type emailRow struct {
	ID         string         `db:"id"`
	Sender     sql.NullString `db:"sender"`
	Subject    sql.NullString `db:"subject"`
	Body       sql.NullString `db:"body"`
	ReceivedAt sql.NullString `db:"received_at"`
	LabelIDs   sql.NullString `db:"label_ids"`
	IsRead     bool           `db:"is_read"`
}

// refRow mirrors the provider-reference columns.
type refRow struct {
	Mailbox string `db:"mailbox"`
	UID     uint32 `db:"uid"`
}

// SaveEmail upserts one email snapshot and refreshes its label mappings.
func (s *Store) SaveEmail(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Email.ID == "" {
		return fmt.Errorf("email id cannot be empty")
	}

	labelIDs := strings.Join(rec.Email.Labels, ",")

	_, err := s.queries.Exec("insert-email",
		string(rec.Email.ID),
		rec.Mailbox,
		rec.UID,
		rec.Email.Sender,
		rec.Email.Subject,
		rec.Email.Body,
		rec.Email.ReceivedAt,
		labelIDs,
		rec.Email.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to save email %s: %w", rec.Email.ID, err)
	}

	// Refresh the label mapping wholesale; a re-fetched message may have
	// lost labels since the previous run.
	if _, err := s.queries.Exec("delete-email-labels", string(rec.Email.ID)); err != nil {
		return fmt.Errorf("failed to clear labels for email %s: %w", rec.Email.ID, err)
	}
	for _, label := range rec.Email.Labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, err := s.queries.Exec("insert-email-label", string(rec.Email.ID), label); err != nil {
			return fmt.Errorf("failed to save label %q for email %s: %w", label, rec.Email.ID, err)
		}
	}

	s.logger.Debug("saved email", "id", rec.Email.ID, "mailbox", rec.Mailbox, "uid", rec.UID)
	return nil
}

// GetAllEmails returns every stored email, ordered by received_at descending
// then ID for determinism.
func (s *Store) GetAllEmails(ctx context.Context) ([]types.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []emailRow
	if err := s.queries.Select("get-all-emails", &rows); err != nil {
		return nil, fmt.Errorf("failed to retrieve emails: %w", err)
	}

	emails := make([]types.Email, 0, len(rows))
	for _, row := range rows {
		emails = append(emails, types.Email{
			ID:         types.EmailID(row.ID),
			Sender:     row.Sender.String,
			Subject:    row.Subject.String,
			Body:       row.Body.String,
			ReceivedAt: row.ReceivedAt.String,
			Labels:     splitLabels(row.LabelIDs.String),
			IsRead:     row.IsRead,
		})
	}

	s.logger.Debug("retrieved emails", "count", len(emails))
	return emails, nil
}

// ProviderRef returns the mailbox and IMAP UID for a stored email.
// Returns types.ErrEmailNotFound when the ID has no stored record.
func (s *Store) ProviderRef(ctx context.Context, id types.EmailID) (string, uint32, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	var ref refRow
	if err := s.queries.Get("get-email-ref", &ref, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, fmt.Errorf("%w: %s", types.ErrEmailNotFound, id)
		}
		return "", 0, fmt.Errorf("failed to look up email %s: %w", id, err)
	}
	return ref.Mailbox, ref.UID, nil
}

// CountEmails returns the number of stored emails.
func (s *Store) CountEmails(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	if err := s.queries.Get("count-emails", &count); err != nil {
		return 0, fmt.Errorf("failed to count emails: %w", err)
	}
	return count, nil
}

// splitLabels splits the comma-joined label_ids column, dropping empties.
func splitLabels(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
