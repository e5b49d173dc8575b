package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/keyboard"
	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

// Callback keys. Button uniques double as registry keys, so every constant
// here has a RegisterCallback counterpart in wiring.
const (
	cbGetClone    = "get_clone"
	cbShowPricing = "show_pricing"
	cbHelp        = "help"

	cbAdminStats     = "admin_stats"
	cbAdminGenKey    = "admin_genkey"
	cbAdminKeys      = "admin_keys"
	cbAdminClones    = "admin_clones"
	cbAdminBan       = "admin_ban"
	cbAdminUnban     = "admin_unban"
	cbAdminBackup    = "admin_set_backup"
	cbAdminNoBackup  = "admin_remove_backup"
	cbAdminPricing   = "admin_set_pricing"
	cbAdminNoPricing = "admin_remove_pricing"
	cbAdminBroadcast = "admin_broadcast"
	cbAdminBack      = "admin_back"

	cbRevoke = "revoke"
	cbUnban  = "unban"
)

// WelcomeMarkup builds the /start menu. The clone button leads to the pricing
// view only when pricing text is configured, otherwise straight to contact.
// The backup button appears only when a backup link is set.
func WelcomeMarkup(s models.Settings) *tele.ReplyMarkup {
	cloneKey := cbGetClone
	if s.PricingText != nil {
		cloneKey = cbShowPricing
	}

	rows := [][]keyboard.InlineBtn{
		{{Text: "🤖 Get Bot Clone", Unique: cloneKey}},
	}
	if s.BackupLink != nil {
		rows = append(rows, []keyboard.InlineBtn{{Text: "📢 Backup Channel", URL: *s.BackupLink}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "❓ Help", Unique: cbHelp}})

	return keyboard.InlineButtonsRows(rows...)
}

// PricingMarkup follows the pricing view with the contact step.
func PricingMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💳 Contact Admin to Purchase", Unique: cbGetClone},
	})
}

// AdminMarkup builds the owner panel keyboard.
func AdminMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📊 Stats", Unique: cbAdminStats}},
		[]keyboard.InlineBtn{
			{Text: "🔑 Generate Key", Unique: cbAdminGenKey},
			{Text: "🗂 View Keys", Unique: cbAdminKeys},
		},
		[]keyboard.InlineBtn{{Text: "👥 View Cloners", Unique: cbAdminClones}},
		[]keyboard.InlineBtn{
			{Text: "🚫 Ban User", Unique: cbAdminBan},
			{Text: "✅ Unban User", Unique: cbAdminUnban},
		},
		[]keyboard.InlineBtn{
			{Text: "🔗 Set Backup", Unique: cbAdminBackup},
			{Text: "🗑 Remove Backup", Unique: cbAdminNoBackup},
		},
		[]keyboard.InlineBtn{
			{Text: "💰 Set Pricing", Unique: cbAdminPricing},
			{Text: "🗑 Remove Pricing", Unique: cbAdminNoPricing},
		},
		[]keyboard.InlineBtn{{Text: "📣 Broadcast", Unique: cbAdminBroadcast}},
	)
}

// BackMarkup is a single back button to the admin panel.
func BackMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Back", Unique: cbAdminBack},
	})
}
