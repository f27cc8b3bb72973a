// Package typing exposes the keystroke-presence poll endpoints.
package typing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"autopier/internal/lib/api/response"
	"autopier/internal/lib/sl"
	typingsvc "autopier/internal/service/typing"
)

type Core interface {
	SetTyping(chatID, userName string, isTyping bool) error
	TypingStatus(chatID string) (typingsvc.Status, error)
}

// Status answers the typing poll for one chat.
func Status(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID := r.URL.Query().Get("chatId")
		if chatID == "" {
			render.JSON(w, r, response.Ok(typingsvc.Status{}))
			return
		}

		status, err := handler.TypingStatus(chatID)
		if err != nil {
			log.With(
				sl.Module("http.handlers.typing"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			).Error("typing status", sl.Err(err))
			// Presence is soft state: degrade to not typing.
			render.JSON(w, r, response.Ok(typingsvc.Status{}))
			return
		}
		render.JSON(w, r, response.Ok(status))
	}
}

type SignalRequest struct {
	ChatID   string `json:"chatId"`
	UserName string `json:"userName"`
	Typing   bool   `json:"typing"`
}

// Signal records a start or stop typing event.
func Signal(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.typing"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SignalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.ChatID == "" || req.UserName == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("chatId e userName são obrigatórios"))
			return
		}

		if err := handler.SetTyping(req.ChatID, req.UserName, req.Typing); err != nil {
			logger.Error("set typing", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro interno"))
			return
		}
		render.JSON(w, r, response.Ok("success"))
	}
}
