// internal/mail/fetcher.go
package mail

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	"github.com/pkg/errors"

	"github.com/dhollis/mailkeeper/internal/store"
	"github.com/dhollis/mailkeeper/internal/types"
)

// Fetcher pulls message snapshots from an IMAP mailbox.
type Fetcher struct {
	client Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher over an authenticated client.
func NewFetcher(client Client, logger *slog.Logger) (*Fetcher, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}, nil
}

// Fetch retrieves up to maxEmails of the most recent messages in mailbox as
// store records. Messages that cannot be converted are logged and skipped; a
// transport failure aborts the fetch.
func (f *Fetcher) Fetch(ctx context.Context, mailbox string, maxEmails int) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Read-only select: fetching must not flip \Seen on messages the rules
	// never touch.
	mbox, err := f.client.Select(mailbox, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select mailbox %s", mailbox)
	}
	if mbox.Messages == 0 {
		f.logger.Info("mailbox is empty", "mailbox", mailbox)
		return nil, nil
	}

	from := uint32(1)
	if maxEmails > 0 && mbox.Messages > uint32(maxEmails) {
		from = mbox.Messages - uint32(maxEmails) + 1
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- f.client.Fetch(seqSet, items, messages)
	}()

	var records []store.Record
	for msg := range messages {
		rec, err := f.recordFromMessage(mailbox, msg, section)
		if err != nil {
			f.logger.Warn("skipping message", "mailbox", mailbox, "uid", msg.Uid, "error", err)
			continue
		}
		records = append(records, rec)
	}

	if err := <-done; err != nil {
		return nil, errors.Wrapf(err, "fetch failed for mailbox %s", mailbox)
	}

	f.logger.Info("fetched messages", "mailbox", mailbox, "count", len(records))
	return records, nil
}

// recordFromMessage converts one fetched message into a store record.
func (f *Fetcher) recordFromMessage(mailbox string, msg *imap.Message, section *imap.BodySectionName) (store.Record, error) {
	if msg.Envelope == nil {
		return store.Record{}, errors.New("message has no envelope")
	}

	id, ok := types.EmailIDFromMessageID(msg.Envelope.MessageId)
	if !ok {
		id = types.NewEmailID()
	}

	var sender string
	if len(msg.Envelope.From) > 0 {
		sender = msg.Envelope.From[0].Address()
	}

	var body string
	if literal := msg.GetBody(section); literal != nil {
		text, err := extractTextBody(literal)
		if err != nil {
			// Metadata alone is enough for sender/subject/date rules
			f.logger.Warn("could not extract body", "uid", msg.Uid, "error", err)
		} else {
			body = text
		}
	}

	// A missing envelope date degrades to the fetch time rather than the
	// zero value, which would satisfy every greater_than_days rule
	receivedAt := msg.Envelope.Date
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	isRead := false
	labels := make([]string, 0, len(msg.Flags))
	for _, flag := range msg.Flags {
		if flag == imap.SeenFlag {
			isRead = true
		}
		labels = append(labels, flag)
	}
	if len(labels) == 0 {
		labels = nil
	}

	return store.Record{
		Email: types.Email{
			ID:         id,
			Sender:     sender,
			Subject:    msg.Envelope.Subject,
			Body:       body,
			ReceivedAt: receivedAt.UTC().Format(time.RFC3339),
			Labels:     labels,
			IsRead:     isRead,
		},
		Mailbox: mailbox,
		UID:     msg.Uid,
	}, nil
}

// extractTextBody pulls the first text/plain part out of a raw message,
// falling back to text/html when no plain part exists.
func extractTextBody(r io.Reader) (string, error) {
	mr, err := gomail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", errors.Wrap(err, "failed to read message")
	}
	if mr == nil {
		return "", errors.New("message has no readable body")
	}

	var htmlFallback string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "failed to read message part")
		}

		header, ok := p.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}

		switch contentType {
		case "text/plain":
			content, err := io.ReadAll(p.Body)
			if err != nil {
				return "", errors.Wrap(err, "failed to read text part")
			}
			return strings.TrimSpace(string(content)), nil
		case "text/html":
			if htmlFallback == "" {
				content, err := io.ReadAll(p.Body)
				if err == nil {
					htmlFallback = strings.TrimSpace(string(content))
				}
			}
		}
	}

	return htmlFallback, nil
}
