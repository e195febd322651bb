package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-counter/internal/service"
)

// StatsHandler serves the cross-month summary endpoint.
type StatsHandler struct {
	Stats *service.Stats
	Log   *zap.Logger
}

func NewStatsHandler(stats *service.Stats, log *zap.Logger) *StatsHandler {
	return &StatsHandler{Stats: stats, Log: log}
}

// Summary aggregates the caller's counters across all stored months.
func (h *StatsHandler) Summary(c echo.Context) error {
	sum, err := h.Stats.Summarize(currentUserID(c))
	if err != nil {
		h.Log.Error("summarize failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	return c.JSON(http.StatusOK, sum)
}
