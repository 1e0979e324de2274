package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/chatdigest/internal/middleware"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	text := fmt.Sprintf(
		"👋 Hi, *%s*!\n\n"+
			"I summarize exported WhatsApp chats. Export a chat from WhatsApp "+
			"(with or without media) and send me the resulting *.zip* file.\n\n"+
			"📋 *Commands:*\n"+
			"/summarize — Generate a summary of the loaded chat\n"+
			"/stats — Message counts and most active participants\n"+
			"/settings — Time window, detail level, media budget\n"+
			"/media — Preview media from the loaded chat\n",
		user.FirstName,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
}
