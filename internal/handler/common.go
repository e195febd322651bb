package handler

import "github.com/labstack/echo/v4"

// currentUserID returns the user id placed in the context by the session
// middleware, or "" for anonymous requests.
func currentUserID(c echo.Context) string {
	uid, _ := c.Get("user_id").(string)
	return uid
}

// currentUserEmail returns the session email, if any.
func currentUserEmail(c echo.Context) string {
	email, _ := c.Get("user_email").(string)
	return email
}
