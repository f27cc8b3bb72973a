package order

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

// List returns every order with its catalog car, for the dashboard.
func List(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders := handler.AllOrders()
		rows := make([]map[string]any, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, map[string]any{
				"order": o,
				"car":   handler.CarByID(o.CarID),
			})
		}
		render.JSON(w, r, response.Ok(rows))
	}
}

// Get returns one order with its catalog car.
func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		order, err := handler.GetOrder(chi.URLParam(r, "id"), "")
		if err != nil {
			writeOrderError(w, r, logger, err)
			return
		}
		render.JSON(w, r, response.Ok(map[string]any{
			"order": order,
			"car":   handler.CarByID(order.CarID),
		}))
	}
}

// StaffMessages returns the order chat and marks it read.
func StaffMessages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		messages, err := handler.StaffOrderMessages(chi.URLParam(r, "id"))
		if err != nil {
			writeOrderError(w, r, logger, err)
			return
		}
		render.JSON(w, r, response.Ok(messages))
	}
}

// UpdateStatus moves an order through its lifecycle.
func UpdateStatus(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
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

		order, err := handler.UpdateOrderStatus(chi.URLParam(r, "id"), req.Status)
		if err != nil {
			writeOrderError(w, r, logger, err)
			return
		}
		render.JSON(w, r, response.Ok(order))
	}
}
