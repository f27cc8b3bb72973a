package order

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
	ordersvc "autopier/internal/service/order"
)

// Messages returns the order chat history, scoped to the owning
// customer via the phone query parameter.
func Messages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		order, messages, err := handler.OrderMessages(id, r.URL.Query().Get("phone"))
		if err != nil {
			writeOrderError(w, r, logger, err)
			return
		}

		render.JSON(w, r, response.Ok(map[string]any{
			"orderId":      order.ID,
			"customerName": order.CustomerName,
			"messages":     messages,
		}))
	}
}

// SendMessage appends a message to the order chat from either side.
func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req struct {
			Content    string `json:"content"`
			Sender     string `json:"sender"`
			SenderName string `json:"senderName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		msg, err := handler.SendOrderMessage(chi.URLParam(r, "id"), req.Content, req.Sender, req.SenderName)
		if err != nil {
			writeOrderError(w, r, logger, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(msg))
	}
}

// ClientList returns the customer's orders with chat summaries.
func ClientList(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		if phone == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Telefone é obrigatório"))
			return
		}
		render.JSON(w, r, response.Ok(handler.ClientOrders(phone)))
	}
}

func writeOrderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ordersvc.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Pedido não encontrado"))
	case errors.Is(err, ordersvc.ErrAccessDenied):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("Acesso negado. Este pedido não pertence a você."))
	case errors.Is(err, ordersvc.ErrEmptyMessage):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Mensagem não pode ser vazia"))
	case errors.Is(err, ordersvc.ErrInvalidStatus):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Status inválido"))
	case errors.Is(err, ordersvc.ErrStatusFinal):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("Pedido já foi finalizado"))
	default:
		logger.Error("order request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro interno"))
	}
}
