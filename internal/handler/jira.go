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

// JiraHandler serves the external-sync configuration and explicit sync
// endpoints.
type JiraHandler struct {
	Config  *jira.ConfigStore
	Client  *jira.Client
	Records *repository.RecordStore
	Log     *zap.Logger
}

func NewJiraHandler(cfg *jira.ConfigStore, client *jira.Client, records *repository.RecordStore, log *zap.Logger) *JiraHandler {
	return &JiraHandler{Config: cfg, Client: client, Records: records, Log: log}
}

type jiraConfigResp struct {
	URL          string `json:"url,omitempty"`
	Email        string `json:"email,omitempty"`
	JQL          string `json:"jql,omitempty"`
	Configured   bool   `json:"configured"`
	UserSpecific bool   `json:"user_specific,omitempty"`
}

// GetConfig returns the stored Jira config with the API token redacted.
func (h *JiraHandler) GetConfig(c echo.Context) error {
	cfg, userSpecific, err := h.Config.Load(currentUserID(c))
	if err != nil {
		h.Log.Error("load jira config failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load config failed"})
	}
	if cfg == nil {
		return c.JSON(http.StatusOK, jiraConfigResp{Configured: false})
	}
	return c.JSON(http.StatusOK, jiraConfigResp{
		URL:          cfg.URL,
		Email:        cfg.Email,
		JQL:          cfg.JQL,
		Configured:   true,
		UserSpecific: userSpecific,
	})
}

// SetConfig stores the Jira config for the caller (or globally when
// anonymous).
func (h *JiraHandler) SetConfig(c echo.Context) error {
	var cfg model.JiraConfig
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	userSpecific, err := h.Config.Save(currentUserID(c), cfg)
	if err != nil {
		h.Log.Error("save jira config failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "save config failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user_specific": userSpecific})
}

// SyncNow fetches live counts from Jira and, on success, overwrites the
// current month's counters with them (no merge) before saving. On failure
// the stored record is left untouched and the reason is surfaced as a
// structured error.
func (h *JiraHandler) SyncNow(c echo.Context) error {
	uid := currentUserID(c)
	cfg, _, err := h.Config.Load(uid)
	if err != nil {
		h.Log.Error("load jira config failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "load config failed"})
	}

	snap, err := h.Client.FetchCounts(c.Request().Context(), cfg)
	if err != nil {
		var serr *jira.SyncError
		if errors.As(err, &serr) {
			return c.JSON(http.StatusBadGateway, echo.Map{
				"success": false,
				"error":   serr.Error(),
				"reason":  string(serr.Reason),
			})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": err.Error()})
	}

	month := repository.CurrentMonth()
	rec, err := h.Records.Load(uid, month)
	if err != nil {
		h.Log.Error("load month record failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "load data failed"})
	}
	rec.PendingTickets = snap.PendingTickets
	rec.ResolvedTickets = snap.ResolvedTickets
	rec.TotalTickets = snap.TotalTickets
	if _, err := h.Records.Save(uid, month, rec, "jira_sync"); err != nil {
		h.Log.Error("save month record failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "save data failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": snap})
}
