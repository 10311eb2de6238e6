// Package mail talks to the IMAP provider: fetching message metadata into
// store records and executing rule actions against the mailbox.
package mail

import (
	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/pkg/errors"
)

// Client is an interface to abstract the imap client methods used.
type Client interface {
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	UidCopy(seqset *imap.SeqSet, dest string) error
	Create(name string) error
	List(ref, name string, ch chan *imap.MailboxInfo) error
	Logout() error
}

// Dial connects to an IMAP server over TLS and authenticates.
// The caller owns the connection and must Logout when done.
func Dial(addr, username, password string) (Client, error) {
	c, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}

	if err := c.Login(username, password); err != nil {
		c.Logout()
		return nil, errors.Wrapf(err, "login failed for %s", username)
	}

	return c, nil
}
