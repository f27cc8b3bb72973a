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

type CreateRequest struct {
	CarID              string  `json:"carId"`
	Type               string  `json:"type"`
	CustomerName       string  `json:"customerName"`
	CustomerPhone      string  `json:"customerPhone"`
	CustomerEmail      string  `json:"customerEmail"`
	VehicleName        string  `json:"vehicleName"`
	VehicleBrand       string  `json:"vehicleBrand"`
	VehicleYear        int     `json:"vehicleYear"`
	VehicleMileage     int     `json:"vehicleMileage"`
	VehicleDescription string  `json:"vehicleDescription"`
	ProposedPrice      float64 `json:"proposedPrice"`
	VehicleInterest    string  `json:"vehicleInterest"`
	Message            string  `json:"message"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.negotiation"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		n, err := handler.CreateNegotiation(negotiationsvc.CreateInput{
			CarID:              req.CarID,
			Type:               req.Type,
			CustomerName:       req.CustomerName,
			CustomerPhone:      req.CustomerPhone,
			CustomerEmail:      req.CustomerEmail,
			VehicleName:        req.VehicleName,
			VehicleBrand:       req.VehicleBrand,
			VehicleYear:        req.VehicleYear,
			VehicleMileage:     req.VehicleMileage,
			VehicleDescription: req.VehicleDescription,
			ProposedPrice:      req.ProposedPrice,
			VehicleInterest:    req.VehicleInterest,
			Message:            req.Message,
		})
		if err != nil {
			if errors.Is(err, negotiationsvc.ErrMissingContact) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Nome e telefone são obrigatórios"))
				return
			}
			logger.Error("create negotiation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro ao criar negociação"))
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(map[string]any{
			"id":     n.ID,
			"status": n.Status,
		}))
	}
}
