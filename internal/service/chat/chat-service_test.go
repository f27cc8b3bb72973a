package chat

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"autopier/entity"
	"autopier/internal/filestore"
)

func newTestService(t *testing.T) (*Service, *filestore.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := filestore.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}
	svc := NewChatService(log)
	svc.SetRepository(store)
	return svc, store
}

func testClient() entity.ClientMeta {
	return entity.NewClientMeta("João Silva", "69993716918")
}

func TestEnsureSessionIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ref := entity.NegotiationRef("neg-1")

	first, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatWaitingResponse)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	second, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatWaitingResponse)
	if err != nil {
		t.Fatalf("EnsureSession again: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second EnsureSession returned a new session: %s vs %s", first.ID, second.ID)
	}

	all, _ := svc.repo.GetAllActiveChats()
	if len(all) != 1 {
		t.Errorf("expected exactly one session, got %d", len(all))
	}
}

func TestRecordMessageUnreadAccounting(t *testing.T) {
	svc, _ := newTestService(t)
	ref := entity.NegotiationRef("neg-1")
	if _, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatActive); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	for i := 0; i < 3; i++ {
		m := entity.NewMessage(ref, "oi", entity.SenderCustomer, "João Silva")
		if err := svc.RecordMessage(ref, m, true); err != nil {
			t.Fatalf("RecordMessage: %v", err)
		}
	}

	session, _ := svc.SessionByReference(ref)
	if session.UnreadCount != 3 {
		t.Errorf("unreadCount = %d, want 3", session.UnreadCount)
	}
	if session.Status != entity.ChatWaitingResponse {
		t.Errorf("status = %s, want %s after customer messages", session.Status, entity.ChatWaitingResponse)
	}

	reply := entity.NewMessage(ref, "Olá, posso ajudar!", entity.SenderStaff, "AutoPier")
	if err := svc.RecordMessage(ref, reply, false); err != nil {
		t.Fatalf("RecordMessage staff: %v", err)
	}

	session, _ = svc.SessionByReference(ref)
	if session.UnreadCount != 0 {
		t.Errorf("unreadCount = %d, want 0 after staff reply", session.UnreadCount)
	}
	if session.Status != entity.ChatActive {
		t.Errorf("status = %s, want %s after staff reply", session.Status, entity.ChatActive)
	}
	if session.LastMessagePreview != "Olá, posso ajudar!" {
		t.Errorf("preview = %q", session.LastMessagePreview)
	}
}

func TestMarkAsReadClearsUnread(t *testing.T) {
	svc, _ := newTestService(t)
	ref := entity.OrderRef("order-1")
	if _, err := svc.EnsureSession(ref, testClient(), "Chevrolet Onix Plus", 89900, entity.ChatActive); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	m := entity.NewMessage(ref, "quando chega?", entity.SenderCustomer, "João Silva")
	if err := svc.RecordMessage(ref, m, true); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	if err := svc.MarkAsRead(ref); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}

	session, _ := svc.SessionByReference(ref)
	if session.UnreadCount != 0 {
		t.Errorf("unreadCount = %d, want 0 after mark read", session.UnreadCount)
	}
}

func TestPreviewTruncatedAtHundredRunes(t *testing.T) {
	svc, _ := newTestService(t)
	ref := entity.NegotiationRef("neg-1")
	if _, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatActive); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	long := strings.Repeat("ã", 150)
	m := entity.NewMessage(ref, long, entity.SenderCustomer, "João Silva")
	if err := svc.RecordMessage(ref, m, true); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	session, _ := svc.SessionByReference(ref)
	if got := len([]rune(session.LastMessagePreview)); got != 100 {
		t.Errorf("preview length = %d runes, want 100", got)
	}
}

func TestRecordMessageBackfillsSessionFromNegotiation(t *testing.T) {
	svc, store := newTestService(t)

	n := entity.NewNegotiation("suv-3", "Maria Souza", "11988887777", "", entity.NegotiationTypeBuy)
	if err := store.SaveNegotiation(*n); err != nil {
		t.Fatalf("SaveNegotiation: %v", err)
	}

	ref := entity.NegotiationRef(n.ID)
	m := entity.NewMessage(ref, "ainda disponível?", entity.SenderCustomer, "Maria Souza")
	if err := svc.RecordMessage(ref, m, true); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	session, err := svc.SessionByReference(ref)
	if err != nil {
		t.Fatalf("SessionByReference: %v", err)
	}
	if session == nil {
		t.Fatal("expected session to be backfilled")
	}
	if session.ClientPhone != "11988887777" {
		t.Errorf("clientPhone = %q", session.ClientPhone)
	}
	if session.UnreadCount != 1 {
		t.Errorf("unreadCount = %d, want 1", session.UnreadCount)
	}
}

func TestCheckActiveReconnect(t *testing.T) {
	svc, store := newTestService(t)

	got, err := svc.CheckActive("69993716918")
	if err != nil {
		t.Fatalf("CheckActive: %v", err)
	}
	if got.Found {
		t.Fatal("expected found=false with no sessions")
	}

	ref := entity.NegotiationRef("neg-1")
	if _, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatWaitingResponse); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	m := entity.NewMessage(ref, "oi", entity.SenderCustomer, "João Silva")
	if err := store.SaveMessage(m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if err := svc.RecordMessage(ref, m, true); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	// A differently formatted number must still find the chat.
	got, err = svc.CheckActive("(69) 9 9371-6918")
	if err != nil {
		t.Fatalf("CheckActive: %v", err)
	}
	if !got.Found {
		t.Fatal("expected found=true")
	}
	if got.Chat == nil || got.Chat.ReferenceID != "neg-1" {
		t.Errorf("chat = %+v", got.Chat)
	}
	if len(got.Messages) != 1 {
		t.Errorf("messages = %d, want 1", len(got.Messages))
	}
	if got.Reference == nil || got.Reference.Kind != entity.ConversationNegotiation {
		t.Errorf("reference = %+v", got.Reference)
	}
}

func TestCheckActiveCarriesRelatedRecord(t *testing.T) {
	svc, store := newTestService(t)

	n := entity.NewNegotiation("suv-3", "João Silva", "69993716918", "", entity.NegotiationTypeBuy)
	if err := store.SaveNegotiation(*n); err != nil {
		t.Fatalf("SaveNegotiation: %v", err)
	}
	ref := entity.NegotiationRef(n.ID)
	if _, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatWaitingResponse); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	m := entity.NewMessage(ref, "oi", entity.SenderCustomer, "João Silva")
	if err := store.SaveMessage(m); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if err := svc.RecordMessage(ref, m, true); err != nil {
		t.Fatalf("RecordMessage: %v", err)
	}

	got, err := svc.CheckActive("69993716918")
	if err != nil {
		t.Fatalf("CheckActive: %v", err)
	}
	if !got.Found {
		t.Fatal("expected found=true")
	}
	record, ok := got.RelatedRecord.(*entity.Negotiation)
	if !ok {
		t.Fatalf("related record = %T, want *entity.Negotiation", got.RelatedRecord)
	}
	if record.ID != n.ID || record.Status != entity.NegotiationPending {
		t.Errorf("related record = %+v", record)
	}
}

func TestCheckActiveByReferenceCarriesRelatedOrder(t *testing.T) {
	svc, store := newTestService(t)

	o := entity.NewOrder("sedan-1", "João Silva", "123456", "69993716918", entity.PaymentPix, "Preto", 1, 89900)
	if err := store.SaveOrder(*o); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	ref := entity.OrderRef(o.ID)
	if _, err := svc.EnsureSession(ref, testClient(), "Chevrolet Onix Plus", 89900, entity.ChatActive); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	got, err := svc.CheckActiveByReference(ref)
	if err != nil {
		t.Fatalf("CheckActiveByReference: %v", err)
	}
	if !got.Found {
		t.Fatal("expected found=true")
	}
	record, ok := got.RelatedRecord.(*entity.Order)
	if !ok {
		t.Fatalf("related record = %T, want *entity.Order", got.RelatedRecord)
	}
	if record.ID != o.ID || record.CustomerName != "João Silva" {
		t.Errorf("related record = %+v", record)
	}
}

func TestCloseForReferenceHidesFromActiveLists(t *testing.T) {
	svc, _ := newTestService(t)
	ref := entity.NegotiationRef("neg-1")
	if _, err := svc.EnsureSession(ref, testClient(), "Honda HR-V", 159900, entity.ChatActive); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	if err := svc.CloseForReference(ref); err != nil {
		t.Fatalf("CloseForReference: %v", err)
	}

	if chats := svc.AllActive(); len(chats) != 0 {
		t.Errorf("AllActive = %d sessions, want 0", len(chats))
	}
	if chats := svc.ActiveForPhone("69993716918"); len(chats) != 0 {
		t.Errorf("ActiveForPhone = %d sessions, want 0", len(chats))
	}

	// Closed sessions are kept, not deleted.
	session, _ := svc.SessionByReference(ref)
	if session == nil || session.Status != entity.ChatClosed {
		t.Errorf("session = %+v, want status closed", session)
	}
}
