package middleware

import tele "gopkg.in/telebot.v4"

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct{ tele.Context }

// counted updates the per-update counters after a successful outbound call.
func (m metricsContext) counted(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	n := 0
	if nv, ok := m.Get("messages").(int); ok {
		n = nv
	}
	m.Set("messages", n+1)
	if hasKeyboard(opts) {
		m.Set("kb", true)
	}
	return nil
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.Edit(what, opts...), opts)
}

func (m metricsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.EditOrSend(what, opts...), opts)
}

func (m metricsContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware instruments context to track messages count and keyboard usage.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set("messages", 0)
		c.Set("kb", false)
		return next(metricsContext{Context: c})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get("messages").(int)
	kb, _ := c.Get("kb").(bool)
	return msgs, kb
}
