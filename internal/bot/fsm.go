package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/helpers"
	"github.com/frsammm1/FranklinReplyTGBot/core/telegram/keyboard"
	"github.com/frsammm1/FranklinReplyTGBot/internal/flow"
)

// InProgress implements the text router's FSM contract.
func (a *App) InProgress(userID int64) bool {
	return a.flow.InProgress(userID)
}

// ManagerHandler feeds incoming text into the open session and renders the
// resulting outcome.
func (a *App) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)

	outcome, err := a.flow.Consume(ctx, sender.ID, c.Text())
	if err != nil {
		_ = helpers.SendText(c, "❌ Something went wrong. Please try again.")
		return err
	}

	switch outcome.Kind {
	case flow.OutcomePromptName:
		return helpers.SendText(c, "Now send the purchaser's name:")

	case flow.OutcomeInvalidID:
		return helpers.SendText(c, "❌ Invalid User ID. Please send a valid number.")

	case flow.OutcomeSelfBan:
		return helpers.SendText(c, "❌ You cannot ban yourself! Send another User ID.")

	case flow.OutcomeKeyIssued:
		markup := keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: "🗑 Revoke This Key", Unique: cbRevoke, Data: outcome.Key.Key},
			{Text: "⬅️ Back", Unique: cbAdminBack},
		})
		return helpers.SendMD(c, fmt.Sprintf(
			"✅ License key generated successfully!\n\n🔑 Key: `%s`\n👤 For: %s (ID: %d)\n\nSend this key to the purchaser.",
			outcome.Key.Key, outcome.Key.PurchaserName, outcome.Key.PurchaserID,
		), markup)

	case flow.OutcomeBanned:
		return helpers.SendText(c, fmt.Sprintf("✅ User %d has been banned!", outcome.TargetID))

	case flow.OutcomeBackupSaved:
		return helpers.SendText(c, "✅ Backup button added successfully! It will now appear for all users.")

	case flow.OutcomePricingSaved:
		return helpers.SendText(c, "✅ Pricing details saved successfully! Users will see this before contacting you.")

	case flow.OutcomeBroadcastDone:
		return helpers.SendText(c, fmt.Sprintf(
			"✅ Broadcast completed!\n\n📤 Sent: %d\n❌ Failed: %d",
			outcome.Tally.Sent, outcome.Tally.Failed,
		))
	}

	return nil
}
