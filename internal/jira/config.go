// Package jira is the boundary to the external issue tracker: per-user
// configuration storage plus a client that turns a Jira search into ticket
// counts. The rest of the application treats it as a black box returning a
// snapshot or a classified error.
package jira

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/iliyamo/ticket-counter/internal/model"
	"github.com/iliyamo/ticket-counter/internal/repository"
)

// ConfigStore persists Jira configuration per user inside the workspace, with
// a shared global file as fallback for un-namespaced deployments.
type ConfigStore struct {
	ws         *repository.Workspaces
	globalPath string
}

func NewConfigStore(ws *repository.Workspaces, globalPath string) *ConfigStore {
	return &ConfigStore{ws: ws, globalPath: globalPath}
}

// Load returns the config for a user, falling back to the global file. The
// second return reports whether the config is user-specific. (nil, false,
// nil) means nothing is configured.
func (s *ConfigStore) Load(userID string) (*model.JiraConfig, bool, error) {
	if userID != "" {
		ws, err := s.ws.For(userID)
		if err != nil {
			return nil, false, err
		}
		cfg, err := readConfig(ws.ConfigPath())
		if err != nil {
			return nil, false, err
		}
		if cfg != nil {
			return cfg, true, nil
		}
	}
	cfg, err := readConfig(s.globalPath)
	return cfg, false, err
}

// Save writes the config for a user, or the global file when no user is
// given. Returns whether the write was user-specific.
func (s *ConfigStore) Save(userID string, cfg model.JiraConfig) (bool, error) {
	path := s.globalPath
	userSpecific := false
	if userID != "" {
		ws, err := s.ws.For(userID)
		if err != nil {
			return false, err
		}
		path = ws.ConfigPath()
		userSpecific = true
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return false, &repository.StorageError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return false, &repository.StorageError{Op: "write", Path: path, Err: err}
	}
	return userSpecific, nil
}

func readConfig(path string) (*model.JiraConfig, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &repository.StorageError{Op: "read", Path: path, Err: err}
	}
	var cfg model.JiraConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, &repository.StorageError{Op: "decode", Path: path, Err: err}
	}
	return &cfg, nil
}
