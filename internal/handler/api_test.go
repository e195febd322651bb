package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-counter/internal/handler"
	"github.com/iliyamo/ticket-counter/internal/jira"
	"github.com/iliyamo/ticket-counter/internal/repository"
	"github.com/iliyamo/ticket-counter/internal/router"
	"github.com/iliyamo/ticket-counter/internal/service"
)

// newTestServer wires the full application against a temp directory, exactly
// as cmd/server does, minus redis and the real Jira endpoint.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	log := zap.NewNop()

	workspaces := repository.NewWorkspaces(filepath.Join(dir, "data"))
	records := repository.NewRecordStore(workspaces)
	sessions := repository.NewFileSessionStore(filepath.Join(dir, "sessions.json"))
	jiraConfig := jira.NewConfigStore(workspaces, filepath.Join(dir, "jira_config.json"))
	jiraClient := jira.NewClient(time.Second)

	e := echo.New()
	router.RegisterHealth(e)
	router.RegisterAPI(e, sessions,
		handler.NewAuthHandler(sessions),
		handler.NewTicketHandler(records, jiraConfig, jiraClient, log),
		handler.NewJiraHandler(jiraConfig, jiraClient, records, log),
		handler.NewStatsHandler(service.NewStats(records, log), log),
	)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func login(t *testing.T, e *echo.Echo, email string) (token, userID string) {
	t.Helper()
	rec, body := doJSON(t, e, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	return token, user["id"].(string)
}

func TestAPI_Health(t *testing.T) {
	e := newTestServer(t)
	for _, path := range []string{"/healthz", "/health", "/api/health"} {
		rec, body := doJSON(t, e, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "tickets-counter", body["service"])
	}
}

func TestAPI_LoginValidation(t *testing.T) {
	e := newTestServer(t)
	rec, _ := doJSON(t, e, http.MethodPost, "/api/auth/login", "", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_WhoamiDeterminism(t *testing.T) {
	e := newTestServer(t)
	token1, uid1 := login(t, e, "a@x.com")
	_, uid2 := login(t, e, "A@X.COM")
	assert.Equal(t, uid1, uid2, "same email derives the same user id on every login")

	rec, body := doJSON(t, e, http.MethodGet, "/api/auth/me", token1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, uid1, body["user"].(map[string]any)["id"])
}

func TestAPI_MeAnonymous(t *testing.T) {
	e := newTestServer(t)
	rec, body := doJSON(t, e, http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["authenticated"])
}

func TestAPI_SaveRequiresSession(t *testing.T) {
	e := newTestServer(t)
	rec, _ := doJSON(t, e, http.MethodPost, "/api/save", "", `{"totalTickets":3}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, e, http.MethodPost, "/api/save", "not-a-real-token", `{"totalTickets":3}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_LoginSaveSummaryScenario(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")
	currentMonth := repository.CurrentMonth()

	rec, body := doJSON(t, e, http.MethodPost, "/api/save", token, `{"totalTickets":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, currentMonth, body["month"])

	rec, body = doJSON(t, e, http.MethodGet, "/api/data", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["totalTickets"])
	assert.Equal(t, float64(0), body["pendingTickets"])
	assert.Equal(t, float64(0), body["resolvedTickets"])
	assert.Len(t, body["history"].([]any), 1)
	_, hasSync := body["jiraSync"]
	assert.False(t, hasSync, "no jira config, no snapshot")

	rec, body = doJSON(t, e, http.MethodGet, "/api/summary", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["totalTickets"])
	months := body["months"].([]any)
	require.Len(t, months, 1)
	assert.Equal(t, currentMonth, months[0].(map[string]any)["month"])

	rec, _ = doJSON(t, e, http.MethodGet, "/api/months", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var keys []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
	assert.Equal(t, []string{currentMonth}, keys)
}

func TestAPI_PartialSaveKeepsOtherCounters(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")

	rec, _ := doJSON(t, e, http.MethodPost, "/api/save", token, `{"pendingTickets":1,"totalTickets":2,"resolvedTickets":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, e, http.MethodPost, "/api/save", token, `{"pendingTickets":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := doJSON(t, e, http.MethodGet, "/api/data", token, "")
	assert.Equal(t, float64(5), body["pendingTickets"])
	assert.Equal(t, float64(2), body["totalTickets"])
	assert.Equal(t, float64(1), body["resolvedTickets"])
	assert.Len(t, body["history"].([]any), 2)
}

func TestAPI_MonthLookupNotFound(t *testing.T) {
	e := newTestServer(t)
	rec, body := doJSON(t, e, http.MethodGet, "/api/month/2020-01", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Month not found", body["error"])

	rec, _ = doJSON(t, e, http.MethodGet, "/api/month/not-a-month", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Logout(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")

	rec, _ := doJSON(t, e, http.MethodPost, "/api/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, body := doJSON(t, e, http.MethodGet, "/api/auth/me", token, "")
	assert.Equal(t, false, body["authenticated"])

	// Logging out again with the dead token is still a 204.
	rec, _ = doJSON(t, e, http.MethodPost, "/api/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPI_JiraConfigRedactsToken(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")

	rec, body := doJSON(t, e, http.MethodGet, "/api/jira/config", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["configured"])

	rec, body = doJSON(t, e, http.MethodPost, "/api/jira/config", token,
		`{"url":"http://jira.local","email":"a@x.com","api_token":"sekrit","jql":"project = OPS"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["user_specific"])

	rec, body = doJSON(t, e, http.MethodGet, "/api/jira/config", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["configured"])
	assert.Equal(t, "http://jira.local", body["url"])
	_, leaked := body["api_token"]
	assert.False(t, leaked, "the API token must never be echoed back")
}

func TestAPI_SyncFailureLeavesRecordUntouched(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")

	rec, _ := doJSON(t, e, http.MethodPost, "/api/save", token, `{"totalTickets":3,"pendingTickets":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, before := doJSON(t, e, http.MethodGet, "/api/data", token, "")

	// No Jira configured: the explicit sync surfaces a structured error.
	rec, body := doJSON(t, e, http.MethodPost, "/api/jira/sync", token, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, string(jira.ReasonNotConfigured), body["reason"])

	_, after := doJSON(t, e, http.MethodGet, "/api/data", token, "")
	assert.Equal(t, before["totalTickets"], after["totalTickets"])
	assert.Equal(t, before["pendingTickets"], after["pendingTickets"])
	assert.Equal(t, before["resolvedTickets"], after["resolvedTickets"])
	assert.Len(t, after["history"].([]any), 1, "no history entry is appended on a failed sync")
}

func TestAPI_SyncNowOverwritesCounters(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"issues":[
			{"fields":{"status":{"name":"Done"}}},
			{"fields":{"status":{"name":"In Progress"}}},
			{"fields":{"status":{"name":"To Do"}}}
		]}`))
	}))
	defer upstream.Close()

	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")

	rec, _ := doJSON(t, e, http.MethodPost, "/api/save", token, `{"totalTickets":99,"pendingTickets":99,"resolvedTickets":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, e, http.MethodPost, "/api/jira/config", token,
		`{"url":"`+upstream.URL+`","email":"a@x.com","api_token":"tok"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, e, http.MethodPost, "/api/jira/sync", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(3), data["totalTickets"])

	_, got := doJSON(t, e, http.MethodGet, "/api/data", token, "")
	assert.Equal(t, float64(3), got["totalTickets"], "sync overwrites, it does not merge")
	assert.Equal(t, float64(2), got["pendingTickets"])
	assert.Equal(t, float64(1), got["resolvedTickets"])
	assert.Len(t, got["history"].([]any), 2)
	require.NotNil(t, got["jiraSync"], "configured reads attach a live snapshot")
}

func TestAPI_AnonymousReadUsesLegacyNamespace(t *testing.T) {
	e := newTestServer(t)
	token, _ := login(t, e, "a@x.com")

	rec, _ := doJSON(t, e, http.MethodPost, "/api/save", token, `{"totalTickets":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// An anonymous read sees the shared namespace, not a@x.com's workspace.
	_, body := doJSON(t, e, http.MethodGet, "/api/data", "", "")
	assert.Equal(t, float64(0), body["totalTickets"])
}
