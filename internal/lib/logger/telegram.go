package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// Notifier delivers a plain-text message to the dealership admin chat.
type Notifier interface {
	SendMessage(msg string)
}

// SetupTelegramHandler wraps the logger so that records at or above
// minLevel are also forwarded to the notifier. Delivery is best-effort
// and asynchronous; a slow notifier must not block request handling.
func SetupTelegramHandler(log *slog.Logger, notifier Notifier, minLevel slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		inner:    log.Handler(),
		notifier: notifier,
		minLevel: minLevel,
	})
}

type telegramHandler struct {
	inner    slog.Handler
	notifier Notifier
	minLevel slog.Level
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= h.minLevel && h.notifier != nil {
		text := fmt.Sprintf("[%s] %s", record.Level, record.Message)
		record.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value)
			return true
		})
		go h.notifier.SendMessage(text)
	}
	return h.inner.Handle(ctx, record)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{
		inner:    h.inner.WithAttrs(attrs),
		notifier: h.notifier,
		minLevel: h.minLevel,
	}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{
		inner:    h.inner.WithGroup(name),
		notifier: h.notifier,
		minLevel: h.minLevel,
	}
}
