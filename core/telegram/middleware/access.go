package middleware

import tele "gopkg.in/telebot.v4"

// OwnerOptions defines how owner-only checks should behave.
type OwnerOptions struct {
	OwnerID  int64
	OnReject tele.HandlerFunc
}

// OwnerOnlyMiddleware ensures that only the owner can invoke downstream handlers.
// No state is read or mutated for rejected actors.
func OwnerOnlyMiddleware(opts OwnerOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.OwnerID != 0 && c.Sender().ID != opts.OwnerID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
