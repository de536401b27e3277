package chatbus_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
)

type memStore struct {
	mu     sync.Mutex
	msgs   []chatbus.Message
	groups map[uuid.UUID]chatbus.Group
}

func newMemStore() *memStore {
	return &memStore{
		groups: make(map[uuid.UUID]chatbus.Group),
	}
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (chatbus.Storer, error) { return m, nil }

func (m *memStore) CreateMessage(ctx context.Context, msg chatbus.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memStore) MarkRead(ctx context.Context, ownerID uuid.UUID, receiverID string, readerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i, msg := range m.msgs {
		if msg.OwnerID != ownerID || msg.ReceiverID != receiverID || msg.IsReadBy(readerID) {
			continue
		}
		m.msgs[i].ReadBy = append(msg.ReadBy, readerID.String())
		n++
	}
	return n, nil
}

func (m *memStore) DeleteMessagesTo(ctx context.Context, ownerID uuid.UUID, receiverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = slices.DeleteFunc(m.msgs, func(msg chatbus.Message) bool {
		return msg.OwnerID == ownerID && msg.ReceiverID == receiverID
	})
	return nil
}

func (m *memStore) QueryMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var msgs []chatbus.Message
	for _, msg := range m.msgs {
		if msg.OwnerID == ownerID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (m *memStore) CreateGroup(ctx context.Context, grp chatbus.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[grp.ID] = grp
	return nil
}

func (m *memStore) UpdateGroup(ctx context.Context, grp chatbus.Group, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.groups[grp.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return chatbus.ErrConflict
	}
	m.groups[grp.ID] = grp
	return nil
}

func (m *memStore) DeleteGroup(ctx context.Context, grp chatbus.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, grp.ID)
	return nil
}

func (m *memStore) QueryGroupByID(ctx context.Context, groupID uuid.UUID) (chatbus.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grp, ok := m.groups[groupID]
	if !ok {
		return chatbus.Group{}, chatbus.ErrNotFound
	}
	return grp, nil
}

func (m *memStore) QueryGroupsByOwner(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var grps []chatbus.Group
	for _, grp := range m.groups {
		if grp.OwnerID == ownerID {
			grps = append(grps, grp)
		}
	}
	return grps, nil
}

// =============================================================================

func Test_Send(t *testing.T) {
	ctx := context.Background()
	core := chatbus.NewCore(newMemStore())

	ownerID := uuid.New()
	sender := uuid.New()
	receiver := uuid.New()

	t.Run("no-receiver", func(t *testing.T) {
		_, err := core.Send(ctx, chatbus.NewMessage{OwnerID: ownerID, SenderID: sender, Content: "hi"})
		if !errors.Is(err, chatbus.ErrNoReceiver) {
			t.Errorf("got %v, want %v", err, chatbus.ErrNoReceiver)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := core.Send(ctx, chatbus.NewMessage{OwnerID: ownerID, SenderID: sender, ReceiverID: receiver.String()})
		if !errors.Is(err, chatbus.ErrEmptyMessage) {
			t.Errorf("got %v, want %v", err, chatbus.ErrEmptyMessage)
		}
	})

	t.Run("read-flow", func(t *testing.T) {
		msg, err := core.Send(ctx, chatbus.NewMessage{
			OwnerID:    ownerID,
			SenderID:   sender,
			SenderName: "Ana",
			ReceiverID: receiver.String(),
			Content:    "hi",
		})
		if err != nil {
			t.Fatalf("Should be able to send: %s", err)
		}

		if !msg.IsReadBy(sender) {
			t.Errorf("Should be read by the sender")
		}
		if msg.IsReadBy(receiver) {
			t.Errorf("Should not be read by the receiver yet")
		}

		n, err := core.MarkRead(ctx, ownerID, receiver.String(), receiver)
		if err != nil {
			t.Fatalf("Should be able to mark read: %s", err)
		}
		if n != 1 {
			t.Errorf("got %d marked, want 1", n)
		}

		n, err = core.MarkRead(ctx, ownerID, receiver.String(), receiver)
		if err != nil {
			t.Fatalf("Should be able to mark read again: %s", err)
		}
		if n != 0 {
			t.Errorf("got %d marked on the second pass, want 0", n)
		}
	})
}

func Test_Groups(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := chatbus.NewCore(store)

	ownerID := uuid.New()
	creator := uuid.New()
	member := uuid.New()

	grp, err := core.CreateGroup(ctx, chatbus.NewGroup{
		OwnerID:   ownerID,
		Name:      "Sales",
		CreatedBy: creator,
		Members:   []uuid.UUID{member},
	})
	if err != nil {
		t.Fatalf("Should be able to create a group: %s", err)
	}

	if !slices.Contains(grp.Members, creator) {
		t.Errorf("Should add the creator as a member: %v", grp.Members)
	}

	upd, err := core.UpdateGroup(ctx, grp, chatbus.UpdateGroup{Members: []uuid.UUID{member}})
	if err != nil {
		t.Fatalf("Should be able to update the group: %s", err)
	}
	if !slices.Contains(upd.Members, creator) {
		t.Errorf("Should keep the creator after a member change: %v", upd.Members)
	}

	stale := grp.UpdatedAt
	renamed := "Sales team"
	if _, err := core.UpdateGroup(ctx, upd, chatbus.UpdateGroup{Name: &renamed, Version: &stale}); !errors.Is(err, chatbus.ErrConflict) {
		t.Errorf("got %v, want %v", err, chatbus.ErrConflict)
	}

	if _, err := core.Send(ctx, chatbus.NewMessage{OwnerID: ownerID, SenderID: member, ReceiverID: upd.Receiver(), Content: "hello"}); err != nil {
		t.Fatalf("Should be able to send to the group: %s", err)
	}

	if err := core.DeleteGroup(ctx, upd); err != nil {
		t.Fatalf("Should be able to delete the group: %s", err)
	}

	msgs, err := core.QueryMessagesByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("Should be able to query messages: %s", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Should drop the group conversation, %d left", len(msgs))
	}
}

func Test_GroupReceiver(t *testing.T) {
	id := uuid.New()
	rcv := chatbus.GroupReceiver(id)

	if !chatbus.IsGroupReceiver(rcv) {
		t.Fatalf("Should recognize %q as a group", rcv)
	}

	got, err := chatbus.ParseGroupReceiver(rcv)
	if err != nil {
		t.Fatalf("Should parse the receiver: %s", err)
	}
	if got != id {
		t.Errorf("got %s, want %s", got, id)
	}

	if _, err := chatbus.ParseGroupReceiver(uuid.NewString()); err == nil {
		t.Errorf("Should reject a user receiver")
	}
}
