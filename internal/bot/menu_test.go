package bot

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/frsammm1/FranklinReplyTGBot/internal/models"
)

func flatten(markup *tele.ReplyMarkup) []tele.InlineButton {
	var out []tele.InlineButton
	for _, row := range markup.InlineKeyboard {
		out = append(out, row...)
	}
	return out
}

func TestWelcomeMarkupDefault(t *testing.T) {
	markup := WelcomeMarkup(models.Settings{})

	buttons := flatten(markup)
	if len(buttons) != 2 {
		t.Fatalf("expected clone and help buttons, got %d", len(buttons))
	}
	if buttons[0].Unique != cbGetClone {
		t.Fatalf("without pricing the clone button must contact directly, got %q", buttons[0].Unique)
	}
	if buttons[1].Unique != cbHelp {
		t.Fatalf("expected help button last, got %q", buttons[1].Unique)
	}
}

func TestWelcomeMarkupWithPricing(t *testing.T) {
	pricing := "Basic: $10"
	markup := WelcomeMarkup(models.Settings{PricingText: &pricing})

	buttons := flatten(markup)
	if buttons[0].Unique != cbShowPricing {
		t.Fatalf("with pricing set the clone button must open pricing, got %q", buttons[0].Unique)
	}
}

func TestWelcomeMarkupWithBackupLink(t *testing.T) {
	link := "https://t.me/backupchannel"
	markup := WelcomeMarkup(models.Settings{BackupLink: &link})

	buttons := flatten(markup)
	if len(buttons) != 3 {
		t.Fatalf("expected clone, backup, help buttons, got %d", len(buttons))
	}
	if buttons[1].URL != link {
		t.Fatalf("backup button must link to %q, got %q", link, buttons[1].URL)
	}
	if buttons[1].Unique != "" {
		t.Fatal("backup button must be a plain URL button")
	}
}

func TestAdminMarkupCoversPanelActions(t *testing.T) {
	markup := AdminMarkup()

	want := map[string]bool{
		cbAdminStats:     false,
		cbAdminGenKey:    false,
		cbAdminKeys:      false,
		cbAdminClones:    false,
		cbAdminBan:       false,
		cbAdminUnban:     false,
		cbAdminBackup:    false,
		cbAdminNoBackup:  false,
		cbAdminPricing:   false,
		cbAdminNoPricing: false,
		cbAdminBroadcast: false,
	}
	for _, btn := range flatten(markup) {
		if _, ok := want[btn.Unique]; ok {
			want[btn.Unique] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Fatalf("admin panel is missing the %q action", key)
		}
	}
}

func TestRegistryWiresEveryMenuCallback(t *testing.T) {
	app := New(1000, nil)
	reg := app.Registry()

	keys := []string{
		cbGetClone, cbShowPricing, cbHelp,
		cbAdminStats, cbAdminGenKey, cbAdminKeys, cbAdminClones,
		cbAdminBan, cbAdminUnban, cbAdminBackup, cbAdminNoBackup,
		cbAdminPricing, cbAdminNoPricing, cbAdminBroadcast, cbAdminBack,
		cbUnban, cbRevoke,
	}
	for _, key := range keys {
		if _, ok := reg.GetCallback(key); !ok {
			t.Fatalf("callback %q is not registered", key)
		}
	}

	for _, cmd := range []string{"/start", "/help", "/admin", "/redeem"} {
		if _, _, ok := reg.LookupCommand(cmd); !ok {
			t.Fatalf("command %q is not registered", cmd)
		}
	}

	visible := reg.ListCommands(true)
	for _, cmd := range visible {
		if cmd.Text == "/admin" || cmd.Text == "/redeem" {
			t.Fatalf("%s must not be advertised in the command menu", cmd.Text)
		}
	}
}
