package model

// JiraSnapshot is the result of one live fetch against the configured Jira
// instance. Snapshots are ephemeral: produced fresh on every fetch, attached
// to read responses, never persisted and never written into history.
type JiraSnapshot struct {
	PendingTickets  int    `json:"pendingTickets"`
	ResolvedTickets int    `json:"resolvedTickets"`
	TotalTickets    int    `json:"totalTickets"`
	LastSync        string `json:"lastSync"`
}

// JiraConfig holds the credentials and query used to reach Jira. Stored per
// user inside the workspace, with a shared global file as fallback. The API
// token must never be echoed back to clients.
type JiraConfig struct {
	URL      string `json:"url"`
	Email    string `json:"email"`
	APIToken string `json:"api_token,omitempty"`
	JQL      string `json:"jql,omitempty"`
}

// Complete reports whether the config carries everything a fetch needs.
func (c JiraConfig) Complete() bool {
	return c.URL != "" && c.Email != "" && c.APIToken != ""
}
