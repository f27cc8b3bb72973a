package negotiation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
	negotiationsvc "autopier/internal/service/negotiation"
)

// Get returns one negotiation with its car and full message history.
// The phone query parameter scopes access to the owning customer.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		clientPhone := r.URL.Query().Get("phone")

		n, messages, err := handler.GetNegotiation(id, clientPhone)
		if err != nil {
			writeNegotiationError(w, r, logger, err)
			return
		}

		render.JSON(w, r, response.Ok(map[string]any{
			"negotiation": n,
			"car":         handler.CarByID(n.CarID),
			"messages":    messages,
		}))
	}
}

// SendMessage appends a customer message to the negotiation chat.
func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		var req struct {
			Content    string `json:"content"`
			SenderName string `json:"senderName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		msg, err := handler.SendCustomerMessage(id, req.Content, req.SenderName)
		if err != nil {
			writeNegotiationError(w, r, logger, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(msg))
	}
}

// ClientList returns the customer's negotiations with chat summaries.
func ClientList(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Telefone é obrigatório"))
			return
		}
		render.JSON(w, r, response.Ok(handler.ClientNegotiations(phone)))
	}
}

func writeNegotiationError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, negotiationsvc.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Negociação não encontrada"))
	case errors.Is(err, negotiationsvc.ErrAccessDenied):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("Acesso negado. Esta negociação não pertence a você."))
	case errors.Is(err, negotiationsvc.ErrEmptyMessage):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Mensagem não pode ser vazia"))
	case errors.Is(err, negotiationsvc.ErrInvalidStatus):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Status inválido"))
	case errors.Is(err, negotiationsvc.ErrStatusFinal):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("Negociação já foi finalizada"))
	default:
		logger.Error("negotiation request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro interno"))
	}
}
