package negotiation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
	negotiationsvc "autopier/internal/service/negotiation"
)

type QuickStartRequest struct {
	CarID         string `json:"carId"`
	CustomerPhone string `json:"customerPhone"`
	CustomerName  string `json:"customerName"`
}

// QuickStart opens or reuses a negotiation from just a car and a phone.
func QuickStart(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req QuickStartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		result, err := handler.QuickStartNegotiation(req.CarID, req.CustomerPhone, req.CustomerName)
		if err != nil {
			if errors.Is(err, negotiationsvc.ErrMissingCar) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("carId e customerPhone são obrigatórios"))
				return
			}
			logger.Error("quick start negotiation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro ao criar negociação"))
			return
		}

		if result.IsNew {
			render.Status(r, http.StatusCreated)
		}
		render.JSON(w, r, response.Ok(result))
	}
}
