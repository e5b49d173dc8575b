package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

const broadcastHeader = "📢 **Broadcast Message**\n\n"

// teleSender adapts the bot client to the broadcast transport interface.
type teleSender struct {
	bot *tele.Bot
}

func newTeleSender(bot *tele.Bot) teleSender {
	return teleSender{bot: bot}
}

func (s teleSender) SendMessage(_ context.Context, userID int64, text string) error {
	_, err := s.bot.Send(&tele.User{ID: userID}, broadcastHeader+text, &tele.SendOptions{
		ParseMode: tele.ModeMarkdown,
	})
	return err
}
