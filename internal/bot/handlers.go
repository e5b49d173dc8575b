package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/format"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/helpers"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/keyboard"
	"github.com/frsammm1/FranklinReplyTGBot/internal/service"
)

// The original bot this clone system descends from.
const (
	creatorName = "Sam"
	creatorID   = int64(7504969018)
)

const (
	bannedText = "❌ You are banned from using this bot."
	helpText   = "ℹ️ **Bot Help**\n\nAvailable Commands:\n/start - Start the bot\n/help - Show this help message\n/admin - Admin panel (Owner only)\n\nFor any questions, contact the bot owner."
)

func (a *App) handleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)

	banned, err := a.users.IsBanned(ctx, sender.ID)
	if err != nil {
		return err
	}
	if banned {
		return helpers.SendText(c, bannedText)
	}

	if err := a.users.Ensure(ctx, sender.ID, sender.Username, sender.FirstName); err != nil {
		return err
	}

	settings, err := a.settings.Get(ctx)
	if err != nil {
		return err
	}

	ownerName, ownerRef := a.ownerContact(ctx)
	text := fmt.Sprintf(
		"👋 Welcome %s!\n\nThis bot is created by [%s](tg://user?id=%d)\n\nChoose an option below:",
		escapeMD(sender.FirstName), escapeMD(ownerName), ownerRef,
	)
	return helpers.SendMD(c, text, WelcomeMarkup(settings))
}

func (a *App) handleHelp(c tele.Context) error {
	return helpers.SendMD(c, helpText)
}

func (a *App) handleAdmin(c tele.Context) error {
	return helpers.SendMD(c, "🔐 **Admin Panel**\n\nSelect an option:", AdminMarkup())
}

func (a *App) handleRedeem(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)

	banned, err := a.users.IsBanned(ctx, sender.ID)
	if err != nil {
		return err
	}
	if banned {
		return helpers.SendText(c, bannedText)
	}

	key := strings.TrimSpace(c.Message().Payload)
	if key == "" {
		return helpers.SendText(c, "Usage: /redeem <key>")
	}

	redeemed, err := a.keys.Redeem(ctx, key, sender.ID)
	if err != nil {
		if errors.Is(err, service.ErrKeyInvalid) {
			return helpers.SendText(c, "❌ Invalid or already used key.")
		}
		return err
	}
	return helpers.SendMD(c, fmt.Sprintf(
		"✅ Key redeemed successfully!\n\n🔑 `%s`\n👤 Issued to: %s\n\nYou can now set up your own bot clone.",
		redeemed.Key, redeemed.PurchaserName,
	))
}

func (a *App) cbHelp(c tele.Context) error {
	return helpers.EditOrSendMD(c, helpText)
}

func (a *App) cbShowPricing(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	settings, err := a.settings.Get(ctx)
	if err != nil {
		return err
	}
	pricing := format.DerefString(settings.PricingText, "")
	if pricing == "" {
		return a.cbGetClone(c)
	}
	text := fmt.Sprintf("💰 **Pricing Details**\n\n%s\n\nClick below to contact admin:", pricing)
	return helpers.EditOrSendMD(c, text, PricingMarkup())
}

func (a *App) cbGetClone(c tele.Context) error {
	ctx := helpers.BuildContext(c)

	if a.ownerID == creatorID {
		text := fmt.Sprintf(
			"🤖 **Want to clone this bot?**\n\nContact me to get your own bot clone!\n\n👤 Original Creator: [%s](tg://user?id=%d)\n\nClick the button below to contact:",
			creatorName, creatorID,
		)
		markup := keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: fmt.Sprintf("💬 Contact %s", creatorName), URL: contactURL(creatorID)},
		})
		return helpers.EditOrSendMD(c, text, markup)
	}

	ownerName, _ := a.ownerContact(ctx)
	text := fmt.Sprintf(
		"🤖 **Want to clone this bot?**\n\nContact the bot owner to get your own clone!\n\n👤 Bot Owner: [%s](tg://user?id=%d)\n\n💡 Want a bot like the original? Contact [%s](tg://user?id=%d)\n\nClick the buttons below:",
		escapeMD(ownerName), a.ownerID, creatorName, creatorID,
	)
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: fmt.Sprintf("💬 Contact %s", ownerName), URL: contactURL(a.ownerID)},
		{Text: fmt.Sprintf("🌟 Get Original Bot by %s", creatorName), URL: contactURL(creatorID)},
	})
	return helpers.EditOrSendMD(c, text, markup)
}

// ownerContact resolves the display name and id for the contact links.
func (a *App) ownerContact(ctx context.Context) (string, int64) {
	if a.ownerID == creatorID {
		return creatorName, creatorID
	}
	owner, err := helpers.CurrentUser(ctx, a.users, a.ownerID)
	if err != nil || owner == nil || owner.FirstName == "" {
		return "Owner", a.ownerID
	}
	return owner.FirstName, a.ownerID
}

func contactURL(id int64) string {
	return fmt.Sprintf("tg://user?id=%d", id)
}
