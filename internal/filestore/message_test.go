package filestore

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"autopier/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}
	return store
}

func TestMessagesSortedByCreationTime(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	// Saved out of creation order on purpose.
	for _, m := range []entity.Message{
		{ID: "msg-2", NegotiationID: "neg-1", Content: "segunda", Sender: entity.SenderCustomer, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "msg-0", NegotiationID: "neg-1", Content: "primeira", Sender: entity.SenderCustomer, CreatedAt: base},
		{ID: "msg-3", NegotiationID: "neg-1", Content: "terceira", Sender: entity.SenderStaff, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "msg-1", NegotiationID: "neg-1", Content: "resposta", Sender: entity.SenderStaff, CreatedAt: base.Add(time.Minute)},
	} {
		if err := store.SaveMessage(m); err != nil {
			t.Fatalf("SaveMessage(%s): %v", m.ID, err)
		}
	}

	got, err := store.GetMessagesByConversation(entity.NegotiationRef("neg-1"))
	if err != nil {
		t.Fatalf("GetMessagesByConversation: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("messages = %d, want 4", len(got))
	}
	for i, want := range []string{"msg-0", "msg-1", "msg-2", "msg-3"} {
		if got[i].ID != want {
			t.Errorf("messages[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Errorf("messages[%d] created before messages[%d]", i, i-1)
		}
	}
}

func TestSameInstantMessagesKeepInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	at := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"msg-a", "msg-b", "msg-c"} {
		m := entity.Message{ID: id, OrderID: "order-1", Content: "oi", Sender: entity.SenderCustomer, CreatedAt: at}
		if err := store.SaveMessage(m); err != nil {
			t.Fatalf("SaveMessage(%s): %v", id, err)
		}
	}

	got, err := store.GetMessagesByConversation(entity.OrderRef("order-1"))
	if err != nil {
		t.Fatalf("GetMessagesByConversation: %v", err)
	}
	for i, want := range []string{"msg-a", "msg-b", "msg-c"} {
		if got[i].ID != want {
			t.Errorf("messages[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
}
