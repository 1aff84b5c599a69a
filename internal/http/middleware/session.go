package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"campusapi/internal/database"
	"campusapi/internal/pkg/logger"
)

const SessionLocalKey = "db_session"

// SessionOpener hands out one store session per request.
type SessionOpener interface {
	OpenSession(ctx context.Context) (*database.Session, error)
}

// Session opens a session before the handler runs and releases it after,
// on every exit path.
func Session(o SessionOpener) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := o.OpenSession(c.UserContext())
		if err != nil {
			logger.WithComponent("http").Error().
				Str("request_id", requestID(c)).
				Err(err).
				Msg("open session failed")
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		defer s.Close()

		c.Locals(SessionLocalKey, s)
		return c.Next()
	}
}

// SessionFromCtx returns the session stored by Session.
func SessionFromCtx(c *fiber.Ctx) (*database.Session, bool) {
	s, ok := c.Locals(SessionLocalKey).(*database.Session)
	return s, ok && s != nil
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return rid
}
