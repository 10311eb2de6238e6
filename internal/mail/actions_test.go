package mail

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhollis/mailkeeper/internal/types"
)

// fakeResolver maps email IDs to provider references in memory.
type fakeResolver struct {
	refs map[types.EmailID]struct {
		mailbox string
		uid     uint32
	}
}

func (r *fakeResolver) ProviderRef(_ context.Context, id types.EmailID) (string, uint32, error) {
	ref, ok := r.refs[id]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", types.ErrEmailNotFound, id)
	}
	return ref.mailbox, ref.uid, nil
}

func newFakeResolver(id types.EmailID, mailbox string, uid uint32) *fakeResolver {
	return &fakeResolver{
		refs: map[types.EmailID]struct {
			mailbox string
			uid     uint32
		}{
			id: {mailbox: mailbox, uid: uid},
		},
	}
}

func TestPerformActionsMarkRead(t *testing.T) {
	client := &fakeClient{}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{ActionMarkRead})
	require.NoError(t, err)

	assert.Equal(t, "INBOX", client.selected)
	assert.False(t, client.selectedRO)
	require.Len(t, client.storeCalls, 1)

	call := client.storeCalls[0]
	assert.Equal(t, "7", call.seqSet.String())
	assert.Equal(t, imap.FormatFlagsOp(imap.AddFlags, true), call.item)
	assert.Equal(t, []interface{}{imap.SeenFlag}, call.value)
}

func TestPerformActionsMarkUnread(t *testing.T) {
	client := &fakeClient{}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{ActionMarkUnread})
	require.NoError(t, err)

	require.Len(t, client.storeCalls, 1)
	assert.Equal(t, imap.FormatFlagsOp(imap.RemoveFlags, true), client.storeCalls[0].item)
}

func TestPerformActionsMoveCreatesMissingMailbox(t *testing.T) {
	client := &fakeClient{}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{"move:Archive"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Archive"}, client.createdMailboxes)
	require.Len(t, client.copyCalls, 1)
	assert.Equal(t, "Archive", client.copyCalls[0].dest)
	assert.Equal(t, "7", client.copyCalls[0].seqSet.String())
}

func TestPerformActionsMoveExistingMailbox(t *testing.T) {
	client := &fakeClient{listMailboxes: []string{"Archive"}}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{"move:Archive"})
	require.NoError(t, err)

	assert.Empty(t, client.createdMailboxes)
	require.Len(t, client.copyCalls, 1)
}

func TestPerformActionsSequence(t *testing.T) {
	client := &fakeClient{listMailboxes: []string{"Archive"}}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{ActionMarkRead, "move:Archive"})
	require.NoError(t, err)

	assert.Len(t, client.storeCalls, 1)
	assert.Len(t, client.copyCalls, 1)
}

func TestPerformActionsUnsupported(t *testing.T) {
	client := &fakeClient{}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{"delete_forever"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnsupportedAction))
}

func TestPerformActionsStopsOnFailure(t *testing.T) {
	client := &fakeClient{storeErr: assert.AnError, listMailboxes: []string{"Archive"}}
	resolver := newFakeResolver("msg-1", "INBOX", 7)

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "msg-1", []types.ActionSpec{ActionMarkRead, "move:Archive"})
	require.Error(t, err)
	assert.Empty(t, client.copyCalls)
}

func TestPerformActionsUnknownEmail(t *testing.T) {
	client := &fakeClient{}
	resolver := &fakeResolver{}

	e, err := NewExecutor(client, resolver, testLogger())
	require.NoError(t, err)

	err = e.PerformActions(context.Background(), "no-such-id", []types.ActionSpec{ActionMarkRead})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrEmailNotFound))
	assert.Empty(t, client.selected)
}

func TestValidateAction(t *testing.T) {
	tests := []struct {
		name    string
		action  types.ActionSpec
		wantErr bool
	}{
		{name: "mark read", action: "mark_read", wantErr: false},
		{name: "mark unread", action: "mark_unread", wantErr: false},
		{name: "move with target", action: "move:Archive", wantErr: false},
		{name: "move without target", action: "move:", wantErr: true},
		{name: "move with blank target", action: "move:   ", wantErr: true},
		{name: "unknown token", action: "delete_forever", wantErr: true},
		{name: "empty", action: "", wantErr: true},
		{name: "wrong case", action: "MARK_READ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAction(tt.action)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrUnsupportedAction))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
