package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"autopier/impl/core"
	"autopier/internal/filestore"
	"autopier/internal/service/catalog"
	"autopier/internal/service/chat"
	"autopier/internal/service/negotiation"
	"autopier/internal/service/order"
	"autopier/internal/service/stats"
	"autopier/internal/service/typing"
)

const testApiKey = "test-dashboard-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := filestore.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}

	catalogService := catalog.NewCatalogService(log)

	chatService := chat.NewChatService(log)
	chatService.SetRepository(store)

	negotiationService := negotiation.NewNegotiationService(log, "AutoPier")
	negotiationService.SetRepository(store)
	negotiationService.SetCatalog(catalogService)
	negotiationService.SetSessions(chatService)

	orderService := order.NewOrderService(log)
	orderService.SetRepository(store)
	orderService.SetCatalog(catalogService)
	orderService.SetSessions(chatService)

	statsService := stats.NewStatsService(log)
	statsService.SetRepository(store)

	typingStore := typing.NewMemoryStore()
	t.Cleanup(func() { typingStore.Close() })

	handler := core.New(log)
	handler.SetApiKey(testApiKey)
	handler.SetCatalogService(catalogService)
	handler.SetChatService(chatService)
	handler.SetNegotiationService(negotiationService)
	handler.SetOrderService(orderService)
	handler.SetStatsService(statsService)
	handler.SetTypingStore(typingStore)

	server := httptest.NewServer(Router(log, handler))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestQuickStartAndPollingFlow(t *testing.T) {
	server := newTestServer(t)

	// Customer opens a chat about a car.
	resp := postJSON(t, server.URL+"/api/v1/negotiations/quick", map[string]any{
		"carId":         "suv-1",
		"customerPhone": "(69) 9 9371-6918",
		"customerName":  "João Silva",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("quick start status = %d", resp.StatusCode)
	}
	var quick struct {
		Data struct {
			NegotiationID string `json:"negotiationId"`
			ChatID        string `json:"chatId"`
			IsNew         bool   `json:"isNew"`
		} `json:"data"`
	}
	decode(t, resp, &quick)
	if !quick.Data.IsNew || quick.Data.NegotiationID == "" {
		t.Fatalf("quick = %+v", quick.Data)
	}

	// The client polls its active chats with any phone formatting.
	resp, err := http.Get(server.URL + "/api/v1/chats/active?phone=69993716918")
	if err != nil {
		t.Fatalf("GET chats: %v", err)
	}
	var active struct {
		Data struct {
			Chats []struct {
				ReferenceID string `json:"referenceId"`
				UnreadCount int    `json:"unreadCount"`
			} `json:"chats"`
		} `json:"data"`
	}
	decode(t, resp, &active)
	if len(active.Data.Chats) != 1 {
		t.Fatalf("chats = %d, want 1", len(active.Data.Chats))
	}
	if active.Data.Chats[0].ReferenceID != quick.Data.NegotiationID {
		t.Errorf("chat reference = %q", active.Data.Chats[0].ReferenceID)
	}

	// Reconnect check finds the same conversation.
	resp = postJSON(t, server.URL+"/api/v1/chats/check", map[string]any{
		"phone": "69 99371 6918",
	})
	var check struct {
		Data struct {
			Found bool `json:"found"`
		} `json:"data"`
	}
	decode(t, resp, &check)
	if !check.Data.Found {
		t.Error("reconnect check should find the open chat")
	}
}

func TestCheckoutValidationErrors(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/checkout", map[string]any{
		"carId":         "sedan-1",
		"customerName":  "João Silva",
		"customerRg":    "12345",
		"customerPhone": "123",
		"paymentMethod": "PIX",
		"installments":  3,
		"totalPrice":    89900,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, resp, &body)
	for _, field := range []string{"rg", "phone", "installments"} {
		if _, ok := body.Errors[field]; !ok {
			t.Errorf("missing field error %q: %v", field, body.Errors)
		}
	}
}

func TestDashboardRequiresApiKey(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/dashboard/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/v1/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, server.URL+"/api/v1/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+testApiKey)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", resp.StatusCode)
	}
}

func TestStaffReplyRoundTrip(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/negotiations", map[string]any{
		"carId":         "suv-3",
		"type":          "COMPRA",
		"customerName":  "João Silva",
		"customerPhone": "69993716918",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decode(t, resp, &created)

	// Staff replies through the dashboard.
	raw, _ := json.Marshal(map[string]string{"content": "Olá! Podemos negociar."})
	req, _ := http.NewRequest(http.MethodPost,
		server.URL+"/api/v1/dashboard/negotiations/"+created.Data.ID+"/messages",
		bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+testApiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("staff reply: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("staff reply status = %d", resp.StatusCode)
	}

	// Customer polls the conversation and sees both messages.
	resp, err = http.Get(server.URL + "/api/v1/negotiations/" + created.Data.ID + "?phone=69993716918")
	if err != nil {
		t.Fatalf("GET negotiation: %v", err)
	}
	var got struct {
		Data struct {
			Messages []struct {
				Sender string `json:"sender"`
			} `json:"messages"`
		} `json:"data"`
	}
	decode(t, resp, &got)
	if len(got.Data.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(got.Data.Messages))
	}

	// A stranger's phone is rejected.
	resp, err = http.Get(server.URL + "/api/v1/negotiations/" + created.Data.ID + "?phone=11900000000")
	if err != nil {
		t.Fatalf("GET negotiation: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign phone: status = %d, want 403", resp.StatusCode)
	}
}

func TestTypingEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/typing", map[string]any{
		"chatId":   "neg-1",
		"userName": "João Silva",
		"typing":   true,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signal status = %d", resp.StatusCode)
	}

	resp, err := http.Get(server.URL + "/api/v1/typing?chatId=neg-1")
	if err != nil {
		t.Fatalf("GET typing: %v", err)
	}
	var status struct {
		Data struct {
			Typing   bool   `json:"typing"`
			UserName string `json:"userName"`
		} `json:"data"`
	}
	decode(t, resp, &status)
	if !status.Data.Typing || status.Data.UserName != "João Silva" {
		t.Errorf("typing = %+v", status.Data)
	}

	// Stop signal clears immediately.
	resp = postJSON(t, server.URL+"/api/v1/typing", map[string]any{
		"chatId":   "neg-1",
		"userName": "João Silva",
		"typing":   false,
	})
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/api/v1/typing?chatId=neg-1")
	if err != nil {
		t.Fatalf("GET typing: %v", err)
	}
	decode(t, resp, &status)
	if status.Data.Typing {
		t.Error("typing should be false after stop signal")
	}
}
