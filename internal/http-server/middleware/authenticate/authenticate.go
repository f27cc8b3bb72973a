// Package authenticate guards the dashboard routes with the static API
// key from the configuration, passed as a Bearer token.
package authenticate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
)

type Authenticate interface {
	CheckApiKey(key string) error
}

func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			logger := log.With(
				mod,
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Warn("authorization header not found")
				authFailed(w, r, "Authorization header not found")
				return
			}

			token := ""
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" {
				logger.Warn("token not found")
				authFailed(w, r, "Token not found")
				return
			}

			if err := auth.CheckApiKey(token); err != nil {
				logger.With(sl.Secret("token", token)).Warn("invalid api key")
				authFailed(w, r, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
