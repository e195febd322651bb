package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-counter/internal/middleware"
	"github.com/iliyamo/ticket-counter/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Sessions repository.SessionStore
}

func NewAuthHandler(s repository.SessionStore) *AuthHandler {
	return &AuthHandler{Sessions: s}
}

// ----- DTOs -----

type loginReq struct {
	Email string `json:"email"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}

// Login: create a session for the given email and return its token. There is
// no password; the token is the only credential the client holds afterwards.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, sess, err := h.Sessions.Create(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Token: token,
		User:  userPart{ID: sess.UserID, Email: sess.Email},
	})
}

// Logout: revoke the presented token. Revocation is idempotent, so an
// already-revoked or unknown token still yields 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := ""
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	} else if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return c.NoContent(http.StatusNoContent)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: report whether the request carries a valid session and for whom.
func (h *AuthHandler) Me(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user":          userPart{ID: uid, Email: currentUserEmail(c)},
	})
}
