package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/ticket-counter/internal/handler"
	"github.com/iliyamo/ticket-counter/internal/middleware"
	"github.com/iliyamo/ticket-counter/internal/repository"
)

// RegisterHealth registers the liveness endpoints. These are wired before
// anything storage-related so the probe can answer while the rest of the
// application is still coming up. All three paths exist because different
// deployment platforms probe different conventions.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/health", handler.Health)
	e.GET("/api/health", handler.Health)
}

// RegisterAPI registers the application routes under /api. Every route runs
// the session middleware, which resolves a bearer token (or cookie) into a
// user identity when one is present; individual handlers decide whether
// anonymous access is allowed.
func RegisterAPI(
	e *echo.Echo,
	sessions repository.SessionStore,
	auth *handler.AuthHandler,
	tickets *handler.TicketHandler,
	jira *handler.JiraHandler,
	stats *handler.StatsHandler,
) {
	api := e.Group("/api", middleware.CurrentUser(sessions))

	// Auth: session lifecycle.
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/logout", auth.Logout)
	api.GET("/auth/me", auth.Me)

	// Monthly record reads and writes.
	api.GET("/data", tickets.GetData)
	api.POST("/save", tickets.SaveData)
	api.GET("/months", tickets.ListMonths)
	api.GET("/month/:month", tickets.GetMonth)

	// Cross-month aggregation.
	api.GET("/summary", stats.Summary)

	// External issue-tracker configuration and explicit sync.
	api.GET("/jira/config", jira.GetConfig)
	api.POST("/jira/config", jira.SetConfig)
	api.POST("/jira/sync", jira.SyncNow)
}
