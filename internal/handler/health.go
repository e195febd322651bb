package handler // declare the package name; contains HTTP handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe used by the deployment platform. It performs
// no dependency checks on purpose: the probe must answer "ok" even when
// storage is in a bad state, and before any storage initialization completes.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"service":   "tickets-counter",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
