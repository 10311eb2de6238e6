package types

import (
	"strings"

	"github.com/google/uuid"
)

// NewEmailID generates a UUIDv7 email identifier for messages that carry no
// Message-ID header. Time-ordered IDs ensure sequential inserts cluster in
// B-tree pages. Panics on clock regression (uuid.Must); acceptable for ID
// generation.
func NewEmailID() EmailID {
	return EmailID(uuid.Must(uuid.NewV7()).String())
}

// EmailIDFromMessageID normalizes an RFC 5322 Message-ID header into an
// EmailID, stripping the surrounding angle brackets. Returns ok=false for
// empty input; the caller should fall back to NewEmailID.
func EmailIDFromMessageID(messageID string) (EmailID, bool) {
	s := strings.TrimSpace(messageID)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	if s == "" {
		return "", false
	}
	return EmailID(s), true
}
