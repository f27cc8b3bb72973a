package order

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"autopier/entity"
	"autopier/internal/filestore"
	"autopier/internal/service/catalog"
	"autopier/internal/service/chat"
)

func newTestService(t *testing.T) (*Service, *chat.Service) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := filestore.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}

	chats := chat.NewChatService(log)
	chats.SetRepository(store)

	svc := NewOrderService(log)
	svc.SetRepository(store)
	svc.SetCatalog(catalog.NewCatalogService(log))
	svc.SetSessions(chats)
	return svc, chats
}

func validInput() CheckoutInput {
	return CheckoutInput{
		CarID:         "sedan-1",
		CustomerName:  "João Silva",
		CustomerRG:    "123456",
		CustomerPhone: "69993716918",
		PaymentMethod: "PIX",
		Installments:  1,
		SelectedColor: "Azul",
		TotalPrice:    89900,
	}
}

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	msg, ok := verr.Fields[field]
	if !ok {
		t.Fatalf("no error for field %q, got %v", field, verr.Fields)
	}
	return msg
}

func TestCreateValidOrder(t *testing.T) {
	svc, chats := newTestService(t)

	order, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.Status != entity.OrderPending {
		t.Errorf("status = %s, want PENDING", order.Status)
	}
	if order.PaymentMethod != entity.PaymentPix {
		t.Errorf("payment = %s", order.PaymentMethod)
	}
	if order.Installments != 1 {
		t.Errorf("installments = %d, want 1", order.Installments)
	}

	session, err := chats.SessionByReference(entity.OrderRef(order.ID))
	if err != nil || session == nil {
		t.Fatalf("session = %v, err = %v", session, err)
	}
	if session.Status != entity.ChatActive {
		t.Errorf("session status = %s, want active", session.Status)
	}
	if session.VehicleName != "Chevrolet Onix Plus" {
		t.Errorf("session vehicle = %q", session.VehicleName)
	}
	if session.VehiclePrice != 89900 {
		t.Errorf("session price = %v", session.VehiclePrice)
	}
}

func TestCreateRGValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		rg string
		ok bool
	}{
		{"12345", false},
		{"123456", true},
		{"1234567", false},
		{"12-34-56", true}, // formatting stripped before counting
		{"", false},
	}
	for _, tc := range cases {
		in := validInput()
		in.CustomerRG = tc.rg
		_, err := svc.Create(in)
		if tc.ok && err != nil {
			t.Errorf("rg %q: unexpected error %v", tc.rg, err)
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("rg %q: expected validation error", tc.rg)
				continue
			}
			fieldError(t, err, "rg")
		}
	}
}

func TestCreateInstallmentRules(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name         string
		payment      string
		installments int
		ok           bool
	}{
		{"pix single", "PIX", 1, true},
		{"pix split rejected", "PIX", 3, false},
		{"cash split rejected", "DINHEIRO", 2, false},
		{"credit zero rejected", "CARTAO_CREDITO", 0, false},
		{"credit thirteen rejected", "CARTAO_CREDITO", 13, false},
		{"credit twelve", "CARTAO_CREDITO", 12, true},
		{"credit single", "CREDIT_CARD", 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			in.PaymentMethod = tc.payment
			in.Installments = tc.installments
			_, err := svc.Create(in)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				fieldError(t, err, "installments")
			}
		})
	}
}

func TestCreateCollectsAllFieldErrors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(CheckoutInput{
		CarID:         "sedan-1",
		PaymentMethod: "CHEQUE",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	for _, field := range []string{"name", "rg", "phone", "payment"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing field error %q: %v", field, verr.Fields)
		}
	}
}

func TestCreateNormalizesCustomerData(t *testing.T) {
	svc, _ := newTestService(t)

	in := validInput()
	in.CustomerRG = "12.34.56"
	in.CustomerPhone = "(69) 9 9371-6918"
	in.PaymentMethod = "DINHEIRO"
	in.SelectedColor = ""

	order, err := svc.Create(in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.CustomerRG != "123456" {
		t.Errorf("rg = %q, want digits only", order.CustomerRG)
	}
	if order.CustomerPhone != "69993716918" {
		t.Errorf("phone = %q, want digits only", order.CustomerPhone)
	}
	if order.PaymentMethod != entity.PaymentCash {
		t.Errorf("payment = %s, want CASH", order.PaymentMethod)
	}
	if order.SelectedColor != DefaultColor {
		t.Errorf("color = %q, want default", order.SelectedColor)
	}
}

func TestOrderChatFlow(t *testing.T) {
	svc, chats := newTestService(t)

	order, err := svc.Create(validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ref := entity.OrderRef(order.ID)

	if _, err := svc.SendMessage(order.ID, "Quando posso retirar?", entity.SenderCustomer, ""); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	session, _ := chats.SessionByReference(ref)
	if session.UnreadCount != 1 || session.Status != entity.ChatWaitingResponse {
		t.Errorf("session = unread %d status %s", session.UnreadCount, session.Status)
	}

	if _, err := svc.SendMessage(order.ID, "Na sexta-feira!", entity.SenderStaff, "AutoPier"); err != nil {
		t.Fatalf("SendMessage staff: %v", err)
	}
	session, _ = chats.SessionByReference(ref)
	if session.UnreadCount != 0 || session.Status != entity.ChatActive {
		t.Errorf("session = unread %d status %s", session.UnreadCount, session.Status)
	}

	_, messages, err := svc.Messages(order.ID, "69993716918")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	// Chronological order, customer first.
	if messages[0].Sender != entity.SenderCustomer || messages[1].Sender != entity.SenderStaff {
		t.Errorf("order = %s, %s", messages[0].Sender, messages[1].Sender)
	}

	if _, _, err := svc.Messages(order.ID, "11900000000"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("foreign phone: err = %v, want ErrAccessDenied", err)
	}
}

func TestUpdateStatusClosesChatOnCompletion(t *testing.T) {
	svc, chats := newTestService(t)

	order, _ := svc.Create(validInput())

	if _, err := svc.UpdateStatus(order.ID, "SHIPPED"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("unknown status: err = %v, want ErrInvalidStatus", err)
	}

	updated, err := svc.UpdateStatus(order.ID, entity.OrderCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != entity.OrderCompleted {
		t.Errorf("status = %s", updated.Status)
	}

	session, _ := chats.SessionByReference(entity.OrderRef(order.ID))
	if session.Status != entity.ChatClosed {
		t.Errorf("session status = %s, want closed", session.Status)
	}
	if _, err := svc.UpdateStatus(order.ID, entity.OrderPending); !errors.Is(err, ErrStatusFinal) {
		t.Errorf("reopen: err = %v, want ErrStatusFinal", err)
	}
}

func TestListForPhone(t *testing.T) {
	svc, _ := newTestService(t)

	first, _ := svc.Create(validInput())

	other := validInput()
	other.CustomerPhone = "11988887777"
	svc.Create(other)

	rows := svc.ListForPhone("(69) 9 9371-6918")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ID != first.ID {
		t.Errorf("row id = %q", rows[0].ID)
	}
	if rows[0].CarName != "Chevrolet Onix Plus" {
		t.Errorf("carName = %q", rows[0].CarName)
	}
}
