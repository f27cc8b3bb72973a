// Package bot is a minimal Telegram client used to push error-level log
// records to the operator chat.
package bot

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"autopier/internal/lib/sl"
)

type TgBot struct {
	log     *slog.Logger
	api     *tgbotapi.Bot
	adminId int64
}

func NewTgBot(apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}

	return &TgBot{
		log:     log.With(sl.Module("tgbot")),
		api:     api,
		adminId: adminId,
	}, nil
}

func (t *TgBot) SendMessage(msg string) {
	if msg == "" {
		return
	}
	_, err := t.api.SendMessage(t.adminId, msg, &tgbotapi.SendMessageOpts{})
	if err != nil {
		t.log.With(
			slog.Int64("id", t.adminId),
		).Error("sending message", sl.Err(err))
	}
}
