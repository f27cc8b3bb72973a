package order

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
	ordersvc "autopier/internal/service/order"
)

type CheckoutRequest struct {
	CarID         string  `json:"carId"`
	CustomerName  string  `json:"customerName"`
	CustomerRG    string  `json:"customerRg"`
	CustomerPhone string  `json:"customerPhone"`
	PaymentMethod string  `json:"paymentMethod"`
	Installments  int     `json:"installments"`
	SelectedColor string  `json:"selectedColor"`
	TotalPrice    float64 `json:"totalPrice"`
}

// Checkout validates the order form and creates the order with its chat
// session. Validation failures come back as a field-keyed error map.
func Checkout(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.order"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		order, err := handler.Checkout(ordersvc.CheckoutInput{
			CarID:         req.CarID,
			CustomerName:  req.CustomerName,
			CustomerRG:    req.CustomerRG,
			CustomerPhone: req.CustomerPhone,
			PaymentMethod: req.PaymentMethod,
			Installments:  req.Installments,
			SelectedColor: req.SelectedColor,
			TotalPrice:    req.TotalPrice,
		})
		if err != nil {
			var verr *ordersvc.ValidationError
			if errors.As(err, &verr) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.FieldErrors("Dados inválidos", verr.Fields))
				return
			}
			logger.Error("checkout", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro interno ao processar pedido"))
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(map[string]any{
			"orderId": order.ID,
		}))
	}
}
