// Package stats serves the dashboard overview numbers.
package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	statssvc "autopier/internal/service/stats"
)

type Core interface {
	StatsOverview() statssvc.Overview
}

func Overview(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(handler.StatsOverview()))
	}
}
