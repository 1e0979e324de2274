package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

// OpsLogger mirrors notable events into an operator chat. A zero chat
// ID disables it.
type OpsLogger struct {
	bot    *bot.Bot
	chatID int64
}

func NewOpsLogger(b *bot.Bot, chatID int64) *OpsLogger {
	return &OpsLogger{bot: b, chatID: chatID}
}

func (l *OpsLogger) log(message string) {
	if l.chatID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    l.chatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		slog.Error("failed to send ops log", "error", err)
	}
}

func (l *OpsLogger) LogError(err error, context string) {
	l.log(fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`", context, err.Error()))
}

func (l *OpsLogger) LogSummary(telegramID int64, window string, messages, media int, cost float64) {
	l.log(fmt.Sprintf("📝 *Summary Generated*\n\n*User:* `%d`\n*Window:* %s\n*Messages:* %d\n*Media:* %d\n*Cost:* $%.4f",
		telegramID, window, messages, media, cost))
}
