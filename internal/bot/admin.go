package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/callbacks"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/format"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/helpers"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/keyboard"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/state"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
	"github.com/frsammm1/FranklinReplyTGBot/internal/service"
)

const timeLayout = "2006-01-02 15:04"

// escapeMD guards user-provided names against breaking Markdown rendering.
func escapeMD(text string) string {
	escaped, err := format.EscapeMarkdown(text, format.MarkdownV1, "")
	if err != nil {
		return text
	}
	return escaped
}

// ownerCallback gates owner-only callbacks. Non-owners get a fixed denial
// and no state is read or mutated.
func (a *App) ownerCallback(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil || c.Sender().ID != a.ownerID {
			return helpers.EditOrSendMD(c, "❌ You don't have permission to use admin commands.")
		}
		return h(c)
	}
}

func (a *App) cbAdminStats(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	stats, err := a.users.Stats(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(
		"📊 **Bot Statistics**\n\n👥 Total Users: %d\n🚫 Banned Users: %d\n✅ Active Users: %d",
		stats.Total, stats.Banned, stats.Active(),
	)
	return helpers.EditOrSendMD(c, text, BackMarkup())
}

func (a *App) cbAdminGenKey(c tele.Context) error {
	if err := a.sessions.Begin(c.Sender().ID, state.StepAwaitPurchaserID); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "Please send the Telegram User ID of the purchaser:")
}

func (a *App) cbAdminKeys(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	keys, err := a.keys.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return helpers.EditOrSendMD(c, "📋 No license keys generated yet.", BackMarkup())
	}

	var b strings.Builder
	b.WriteString("📋 **All License Keys:**\n\n")
	for _, key := range keys {
		status := "⏳ Unused"
		if key.Status == models.KeyStatusUsed {
			status = "✅ Used"
		}
		fmt.Fprintf(&b, "🔑 `%s`\n", key.Key)
		fmt.Fprintf(&b, "👤 Purchaser: %s (ID: %d)\n", escapeMD(key.PurchaserName), key.PurchaserID)
		fmt.Fprintf(&b, "📅 Created: %s\n", key.CreatedAt.Format(timeLayout))
		fmt.Fprintf(&b, "Status: %s\n\n", status)
	}
	return helpers.EditOrSendMD(c, b.String(), BackMarkup())
}

func (a *App) cbAdminClones(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	cloners, err := a.keys.ListRedeemed(ctx)
	if err != nil {
		return err
	}
	if len(cloners) == 0 {
		return helpers.EditOrSendMD(c, "👥 No one has cloned the bot yet.", BackMarkup())
	}

	var b strings.Builder
	b.WriteString("👥 **People who cloned the bot:**\n\n")
	for _, key := range cloners {
		fmt.Fprintf(&b, "👤 %s (ID: %d)\n", escapeMD(key.PurchaserName), key.PurchaserID)
		if key.UsedAt != nil {
			fmt.Fprintf(&b, "📅 Cloned: %s\n", key.UsedAt.Format(timeLayout))
		}
		fmt.Fprintf(&b, "🔑 Key: `%s`\n\n", key.Key)
	}
	return helpers.EditOrSendMD(c, b.String(), BackMarkup())
}

func (a *App) cbAdminBan(c tele.Context) error {
	if err := a.sessions.Begin(c.Sender().ID, state.StepAwaitBanTarget); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "Please send the Telegram User ID to ban:")
}

func (a *App) cbAdminUnban(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	banned, err := a.users.ListBanned(ctx)
	if err != nil {
		return err
	}
	if len(banned) == 0 {
		return helpers.EditOrSendMD(c, "✅ No banned users.", BackMarkup())
	}

	buttons := make([]keyboard.InlineBtn, 0, len(banned)+1)
	for _, record := range banned {
		name := "Unknown"
		if user, err := a.users.GetUserByTelegramID(ctx, record.UserID); err == nil && user != nil && user.FirstName != "" {
			name = user.FirstName
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("✅ Unban %s (%d)", name, record.UserID),
			Unique: cbUnban,
			Data:   fmt.Sprintf("%d", record.UserID),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbAdminBack})

	return helpers.EditOrSendMD(c, "🚫 **Banned Users:**\n\nSelect a user to unban:", keyboard.InlineButtons(buttons))
}

func (a *App) cbAdminBackup(c tele.Context) error {
	if err := a.sessions.Begin(c.Sender().ID, state.StepAwaitBackupLink); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "Please send the backup channel/group link:")
}

func (a *App) cbAdminNoBackup(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	if err := a.settings.SetBackupLink(ctx, ""); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "✅ Backup button removed successfully!")
}

func (a *App) cbAdminPricing(c tele.Context) error {
	if err := a.sessions.Begin(c.Sender().ID, state.StepAwaitPricingText); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "Please send the pricing details text:")
}

func (a *App) cbAdminNoPricing(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	if err := a.settings.SetPricingText(ctx, ""); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "✅ Pricing details removed successfully!")
}

func (a *App) cbAdminBroadcast(c tele.Context) error {
	if err := a.sessions.Begin(c.Sender().ID, state.StepAwaitBroadcast); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, "Please send the broadcast message:")
}

func (a *App) cbAdminBack(c tele.Context) error {
	return helpers.EditOrSendMD(c, "🔐 **Admin Panel**\n\nSelect an option:", AdminMarkup())
}

func (a *App) cbUnban(c tele.Context) error {
	targetID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return helpers.EditOrSendMD(c, "❌ Malformed unban request.")
	}
	ctx := helpers.BuildContext(c)
	if err := a.users.Unban(ctx, targetID); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, fmt.Sprintf("✅ User %d has been unbanned!", targetID))
}

func (a *App) cbRevoke(c tele.Context) error {
	key := strings.TrimSpace(callbacks.CallbackPayload(c))
	if key == "" {
		return helpers.EditOrSendMD(c, "❌ Failed to revoke license key.")
	}
	ctx := helpers.BuildContext(c)
	replacement, err := a.keys.Revoke(ctx, key)
	if err != nil {
		if errors.Is(err, service.ErrKeyInvalid) {
			return helpers.EditOrSendMD(c, "❌ Failed to revoke license key.")
		}
		return err
	}
	return helpers.EditOrSendMD(c, fmt.Sprintf(
		"✅ License key revoked successfully!\n\n🔑 New Key: `%s`\n\nThe old key is now invalid and a fresh key has been generated.",
		replacement.Key,
	))
}
