package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// monthKeyRe validates a YYYY-MM calendar key. Month keys come straight from
// URLs and file names, so anything else is rejected at the store boundary.
var monthKeyRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidMonth reports whether key is a well-formed YYYY-MM month key.
func ValidMonth(key string) bool { return monthKeyRe.MatchString(key) }

// Workspaces hands out per-user storage namespaces under a shared data root.
// An empty user id resolves to the legacy shared namespace (the root itself),
// where records written before authentication existed still live.
type Workspaces struct {
	Root string
}

func NewWorkspaces(root string) *Workspaces {
	// Best effort; For reports a real error if the root is unusable.
	_ = os.MkdirAll(root, 0o755)
	return &Workspaces{Root: root}
}

// For returns the workspace for a user, creating its directory on first use.
func (w *Workspaces) For(userID string) (*Workspace, error) {
	dir := w.Root
	if userID != "" {
		dir = filepath.Join(w.Root, "users", userID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	return &Workspace{Dir: dir}, nil
}

// Workspace scopes all record and config paths for one user (or the legacy
// shared namespace).
type Workspace struct {
	Dir string
}

// RecordPath returns the document path for a month's ticket record.
func (ws *Workspace) RecordPath(month string) string {
	return filepath.Join(ws.Dir, "tickets-"+month+".json")
}

// ConfigPath returns the path of the workspace's Jira configuration.
func (ws *Workspace) ConfigPath() string {
	return filepath.Join(ws.Dir, "jira_config.json")
}

// Months enumerates the month keys of all records in the workspace, sorted
// lexicographically descending, which for YYYY-MM keys is reverse
// chronological.
func (ws *Workspace) Months() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(ws.Dir, "tickets-*.json"))
	if err != nil {
		return nil, fmt.Errorf("enumerate months: %w", err)
	}
	months := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "tickets-"), ".json")
		if ValidMonth(key) {
			months = append(months, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}
