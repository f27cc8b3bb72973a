package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/entity"
	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
)

// Active lists the caller's open chats. Without a phone the list is
// empty; the dashboard uses AllActive instead.
func Active(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			render.JSON(w, r, response.Ok(map[string]any{"chats": []entity.ChatSession{}}))
			return
		}
		render.JSON(w, r, response.Ok(map[string]any{"chats": handler.ActiveChats(phone)}))
	}
}

// AllActive lists every open chat for the dashboard.
func AllActive(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(map[string]any{"chats": handler.AllActiveChats()}))
	}
}

type CheckRequest struct {
	Phone         string `json:"phone"`
	NegotiationID string `json:"negotiationId"`
	OrderID       string `json:"orderId"`
}

// Check resolves a reconnect attempt: a returning client asks whether a
// conversation is still open, by reference or by phone.
func Check(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.chat"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		result, err := handler.CheckActiveChat(req.Phone, req.NegotiationID, req.OrderID)
		if err != nil {
			logger.Error("check active chat", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro interno"))
			return
		}
		render.JSON(w, r, response.Ok(result))
	}
}

type ReadRequest struct {
	Type        string `json:"type"`
	ReferenceID string `json:"referenceId"`
}

// MarkRead clears the unread badge for a conversation.
func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.chat"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		kind := entity.ConversationKind(req.Type)
		if kind != entity.ConversationNegotiation && kind != entity.ConversationOrder {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Tipo de conversa inválido"))
			return
		}

		if err := handler.MarkChatRead(kind, req.ReferenceID); err != nil {
			logger.Error("mark chat read", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro interno"))
			return
		}
		render.JSON(w, r, response.Ok("Chat marcado como lido"))
	}
}
