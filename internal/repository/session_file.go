package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/iliyamo/ticket-counter/internal/model"
)

// FileSessionStore keeps the whole session table in a single JSON document,
// reloaded and rewritten on every access. Concurrent writers race under
// last-writer-wins; that is an accepted limitation of this backend.
type FileSessionStore struct {
	Path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{Path: path}
}

func (s *FileSessionStore) Create(ctx context.Context, email string) (string, model.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", model.Session{}, err
	}
	token, err := newSessionToken()
	if err != nil {
		return "", model.Session{}, err
	}
	sess := newSession(email)

	table, err := s.loadTable()
	if err != nil {
		return "", model.Session{}, err
	}
	table[token] = sess
	if err := s.saveTable(table); err != nil {
		return "", model.Session{}, err
	}
	return token, sess, nil
}

func (s *FileSessionStore) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	sess, ok := table[token]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileSessionStore) Revoke(ctx context.Context, token string) error {
	table, err := s.loadTable()
	if err != nil {
		return err
	}
	if _, ok := table[token]; !ok {
		return nil
	}
	delete(table, token)
	return s.saveTable(table)
}

// loadTable reads the session document. Values are decoded per token so that
// legacy entries, written as bare user-id strings by older builds, still
// resolve as minimal sessions with an empty email.
func (s *FileSessionStore) loadTable() (map[string]model.Session, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]model.Session{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.Path, Err: err}
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, &StorageError{Op: "decode", Path: s.Path, Err: err}
	}
	table := make(map[string]model.Session, len(values))
	for token, v := range values {
		var sess model.Session
		if err := json.Unmarshal(v, &sess); err == nil {
			table[token] = sess
			continue
		}
		var uid string
		if err := json.Unmarshal(v, &uid); err == nil && uid != "" {
			table[token] = model.Session{UserID: uid}
		}
	}
	return table, nil
}

func (s *FileSessionStore) saveTable(table map[string]model.Session) error {
	raw, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.Path, Err: err}
	}
	if err := os.WriteFile(s.Path, raw, 0o644); err != nil {
		return &StorageError{Op: "write", Path: s.Path, Err: err}
	}
	return nil
}
