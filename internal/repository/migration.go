package repository

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/iliyamo/ticket-counter/internal/model"
)

// MigrationAction labels the history entry recording a legacy import.
const MigrationAction = "migrated_from_old_format"

// Migrator upgrades the pre-monthly single-file store into the current
// month's record, once. After a successful run the legacy file is renamed to
// a .backup suffix, so a second run is a no-op.
type Migrator struct {
	records    *RecordStore
	legacyPath string
}

func NewMigrator(records *RecordStore, legacyPath string) *Migrator {
	return &Migrator{records: records, legacyPath: legacyPath}
}

// Run performs the migration if the legacy file exists. It returns true when
// data was migrated and false when there was nothing to do. The legacy
// counters are applied only if the current month's record is entirely
// zero-valued, but a history entry carrying the full legacy payload is
// appended either way, so the migration is always recorded.
//
// Migration touches the legacy file and the current-month record without any
// cross-document atomicity; it runs at process start before requests are
// served, and any failure is non-fatal to startup.
func (m *Migrator) Run() (bool, error) {
	raw, err := os.ReadFile(m.legacyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "read", Path: m.legacyPath, Err: err}
	}

	var legacy struct {
		PendingTickets  int `json:"pendingTickets"`
		TotalTickets    int `json:"totalTickets"`
		ResolvedTickets int `json:"resolvedTickets"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return false, &StorageError{Op: "decode", Path: m.legacyPath, Err: err}
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, &StorageError{Op: "decode", Path: m.legacyPath, Err: err}
	}

	month := CurrentMonth()
	rec, err := m.records.Load("", month)
	if err != nil {
		return false, err
	}
	if rec.ZeroCounters() {
		rec.PendingTickets = legacy.PendingTickets
		rec.TotalTickets = legacy.TotalTickets
		rec.ResolvedTickets = legacy.ResolvedTickets
	}

	entry := model.HistoryEntry{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Action:          MigrationAction,
		PendingTickets:  rec.PendingTickets,
		TotalTickets:    rec.TotalTickets,
		ResolvedTickets: rec.ResolvedTickets,
		Legacy:          payload,
	}
	if _, err := m.records.saveEntry("", month, rec, entry); err != nil {
		return false, err
	}

	backup := m.legacyPath + ".backup"
	_ = os.Remove(backup) // replace any prior backup
	if err := os.Rename(m.legacyPath, backup); err != nil {
		return false, &StorageError{Op: "rename", Path: m.legacyPath, Err: err}
	}
	return true, nil
}
