// Package car serves the read-only vehicle catalog.
package car

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"autopier/entity"
	"autopier/internal/lib/api/response"
)

type Core interface {
	Cars() []entity.Car
	CarByID(id string) entity.Car
}

func List(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(handler.Cars()))
	}
}

func Get(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(handler.CarByID(chi.URLParam(r, "id"))))
	}
}
