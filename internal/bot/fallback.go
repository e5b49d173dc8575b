package bot

import tele "gopkg.in/telebot.v4"

// UnknownText ignores text that matches no command and no open session.
// The store is only touched by command handlers.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return nil
	}
}

// UnknownDocument ignores stray uploads.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return nil
	}
}

// UnknownCallback answers stale buttons so clients stop spinning.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "This action is no longer available."})
	}
}
