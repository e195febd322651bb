package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-counter/internal/repository"
)

// SessionCookie is the fallback cookie consulted when no Authorization
// header is present.
const SessionCookie = "session_token"

// CurrentUser returns an Echo middleware that resolves the caller's session
// and injects "user_id" and "user_email" into the request context. The token
// is taken from the Authorization header ("Bearer <token>") or, failing
// that, from the session cookie. A missing or invalid token is not an
// error: the request proceeds anonymously and handlers decide whether an
// authenticated user is required.
func CurrentUser(sessions repository.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			sess, err := sessions.Resolve(ctx, token)
			if err != nil || sess == nil {
				// Unknown token and backend trouble both fall through to
				// anonymous access; write paths reject later.
				return next(c)
			}
			c.Set("user_id", sess.UserID)
			c.Set("user_email", sess.Email)
			return next(c)
		}
	}
}

// bearerToken extracts the session token from the request: the Authorization
// header takes precedence, the session cookie is the fallback.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
