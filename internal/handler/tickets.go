package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-counter/internal/jira"
	"github.com/iliyamo/ticket-counter/internal/model"
	"github.com/iliyamo/ticket-counter/internal/repository"
)

// TicketHandler serves the monthly ticket record endpoints. Reads are open to
// anonymous callers (who see the legacy shared namespace); writes require a
// session.
type TicketHandler struct {
	Records *repository.RecordStore
	Jira    *jira.ConfigStore
	Client  *jira.Client
	Log     *zap.Logger
}

func NewTicketHandler(records *repository.RecordStore, cfg *jira.ConfigStore, client *jira.Client, log *zap.Logger) *TicketHandler {
	return &TicketHandler{Records: records, Jira: cfg, Client: client, Log: log}
}

// GetData returns the current month's record. When Jira is configured for the
// caller, a live snapshot is attached; any fetch failure is swallowed so the
// read path always answers with local data.
func (h *TicketHandler) GetData(c echo.Context) error {
	uid := currentUserID(c)
	rec, err := h.Records.Load(uid, repository.CurrentMonth())
	if err != nil {
		h.Log.Error("load month record failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load data failed"})
	}

	if cfg, _, err := h.Jira.Load(uid); err == nil && cfg != nil {
		snap, ferr := h.Client.FetchCounts(c.Request().Context(), cfg)
		if ferr != nil {
			h.Log.Debug("jira fetch skipped on read path", zap.Error(ferr))
		} else {
			rec.JiraSync = snap
		}
	}
	return c.JSON(http.StatusOK, rec)
}

// SaveData merges a partial counter update into the current month's record
// and persists it, appending one history entry. Requires a session.
func (h *TicketHandler) SaveData(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var upd model.CounterUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	month := repository.CurrentMonth()
	rec, err := h.Records.Load(uid, month)
	if err != nil {
		h.Log.Error("load month record failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "load data failed"})
	}
	saved, err := h.Records.Save(uid, month, repository.Merge(rec, upd), upd.Action)
	if err != nil {
		h.Log.Error("save month record failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "save data failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "month": saved.Month})
}

// ListMonths returns the caller's stored month keys, newest first.
func (h *TicketHandler) ListMonths(c echo.Context) error {
	months, err := h.Records.ListMonths(currentUserID(c))
	if err != nil {
		h.Log.Error("list months failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list months failed"})
	}
	return c.JSON(http.StatusOK, months)
}

// GetMonth returns one month's record by key, 404 when absent.
func (h *TicketHandler) GetMonth(c echo.Context) error {
	month := c.Param("month")
	rec, err := h.Records.Get(currentUserID(c), month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Month not found"})
		}
		if errors.Is(err, repository.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month"})
		}
		h.Log.Error("load month record failed", zap.String("month", month), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load month failed"})
	}
	return c.JSON(http.StatusOK, rec)
}
