package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/ticket-counter/internal/model"
)

// DefaultJQL selects the current user's open tickets when no query is
// configured.
const DefaultJQL = "assignee = currentUser() AND status != Done"

const maxResults = 100

// Reason classifies why a fetch failed. The read path ignores the reason and
// proceeds with local data; the explicit sync path surfaces it to the caller.
type Reason string

const (
	ReasonNotConfigured      Reason = "not_configured"
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonForbidden          Reason = "forbidden"
	ReasonNotFound           Reason = "not_found"
	ReasonUpstreamError      Reason = "upstream_error"
	ReasonTimeout            Reason = "timeout"
	ReasonNetworkUnreachable Reason = "network_unreachable"
	ReasonUnexpected         Reason = "unexpected"
)

// SyncError is the structured failure returned by FetchCounts. It is always a
// recoverable result, never a hard fault.
type SyncError struct {
	Reason  Reason
	Message string
}

func (e *SyncError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Client fetches ticket counts from Jira's search API. Every request is
// bounded by the client timeout so a slow upstream cannot block the read
// path indefinitely.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

type searchResponse struct {
	Issues []struct {
		Fields struct {
			Status struct {
				Name string `json:"name"`
			} `json:"status"`
		} `json:"fields"`
	} `json:"issues"`
}

// FetchCounts runs the configured JQL search and buckets the returned issues
// into pending and resolved counts. All failures come back as *SyncError.
func (c *Client) FetchCounts(ctx context.Context, cfg *model.JiraConfig) (*model.JiraSnapshot, error) {
	if cfg == nil || !cfg.Complete() {
		return nil, &SyncError{Reason: ReasonNotConfigured, Message: "jira url, email and api token are required"}
	}

	jql := cfg.JQL
	if jql == "" {
		jql = DefaultJQL
	}
	endpoint := strings.TrimRight(cfg.URL, "/") + "/rest/api/3/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &SyncError{Reason: ReasonUnexpected, Message: err.Error()}
	}
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", fmt.Sprint(maxResults))
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(cfg.Email, cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, &SyncError{Reason: ReasonInvalidCredentials, Message: "jira rejected the credentials"}
	case http.StatusForbidden:
		return nil, &SyncError{Reason: ReasonForbidden, Message: "jira denied access to the search API"}
	case http.StatusNotFound:
		return nil, &SyncError{Reason: ReasonNotFound, Message: "jira search endpoint not found; check the base URL"}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &SyncError{
			Reason:  ReasonUpstreamError,
			Message: fmt.Sprintf("jira returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &SyncError{Reason: ReasonUpstreamError, Message: "undecodable jira response: " + err.Error()}
	}

	var pending, resolved int
	for _, issue := range sr.Issues {
		if resolvedStatus(issue.Fields.Status.Name) {
			resolved++
		} else {
			pending++
		}
	}
	return &model.JiraSnapshot{
		PendingTickets:  pending,
		ResolvedTickets: resolved,
		TotalTickets:    len(sr.Issues),
		LastSync:        time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// resolvedStatus mirrors the status bucketing the frontend has always used:
// anything whose status name mentions done, resolved or closed counts as
// resolved, everything else is pending.
func resolvedStatus(name string) bool {
	s := strings.ToLower(name)
	return strings.Contains(s, "done") || strings.Contains(s, "resolved") || strings.Contains(s, "closed")
}

func classifyTransport(err error) *SyncError {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &SyncError{Reason: ReasonTimeout, Message: "jira did not respond in time"}
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		return &SyncError{Reason: ReasonNetworkUnreachable, Message: operr.Error()}
	}
	return &SyncError{Reason: ReasonUnexpected, Message: err.Error()}
}
