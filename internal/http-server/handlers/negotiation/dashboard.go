package negotiation

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
)

// List returns every negotiation with its catalog car, for the
// dashboard.
func List(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		negotiations := handler.AllNegotiations()
		rows := make([]map[string]any, 0, len(negotiations))
		for _, n := range negotiations {
			rows = append(rows, map[string]any{
				"negotiation": n,
				"car":         handler.CarByID(n.CarID),
			})
		}
		render.JSON(w, r, response.Ok(rows))
	}
}

// StaffMessages returns the conversation and marks it read.
func StaffMessages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		messages, err := handler.NegotiationMessages(chi.URLParam(r, "id"))
		if err != nil {
			writeNegotiationError(w, r, logger, err)
			return
		}
		render.JSON(w, r, response.Ok(messages))
	}
}

// StaffReply appends a staff message to the negotiation chat.
func StaffReply(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		msg, err := handler.SendStaffMessage(chi.URLParam(r, "id"), req.Content)
		if err != nil {
			writeNegotiationError(w, r, logger, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(msg))
	}
}

// UpdateStatus moves a negotiation through its lifecycle.
func UpdateStatus(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		n, err := handler.UpdateNegotiationStatus(chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeNegotiationError(w, r, logger, err)
			return
		}
		render.JSON(w, r, response.Ok(n))
	}
}
