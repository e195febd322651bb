package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/iliyamo/ticket-counter/internal/model"
)

// historyLimit caps the history sequence; the oldest entries are dropped
// first after each append.
const historyLimit = 1000

// DefaultAction labels history entries when the caller supplies none.
const DefaultAction = "manual_update"

// CurrentMonth returns the current calendar month key in UTC.
func CurrentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

// RecordStore loads and saves monthly ticket records inside per-user
// workspaces. Records are whole JSON documents: a save overwrites the file,
// there is no partial patch.
type RecordStore struct {
	ws *Workspaces
}

func NewRecordStore(ws *Workspaces) *RecordStore {
	return &RecordStore{ws: ws}
}

// Load returns the stored record for (userID, month), or the zero-valued
// record when none exists. A missing record is not an error; only a
// malformed key, an unreadable file or corrupt JSON fails.
func (r *RecordStore) Load(userID, month string) (model.MonthlyRecord, error) {
	rec, _, err := r.read(userID, month)
	return rec, err
}

// Get is like Load but returns ErrNotFound when no record exists. Used for
// direct month lookups where absence must be visible to the caller.
func (r *RecordStore) Get(userID, month string) (model.MonthlyRecord, error) {
	rec, found, err := r.read(userID, month)
	if err != nil {
		return model.MonthlyRecord{}, err
	}
	if !found {
		return model.MonthlyRecord{}, fmt.Errorf("%w: month %s", ErrNotFound, month)
	}
	return rec, nil
}

func (r *RecordStore) read(userID, month string) (model.MonthlyRecord, bool, error) {
	if !ValidMonth(month) {
		return model.MonthlyRecord{}, false, fmt.Errorf("%w: bad month key %q", ErrValidation, month)
	}
	ws, err := r.ws.For(userID)
	if err != nil {
		return model.MonthlyRecord{}, false, err
	}
	path := ws.RecordPath(month)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewMonthlyRecord(month), false, nil
	}
	if err != nil {
		return model.MonthlyRecord{}, false, &StorageError{Op: "read", Path: path, Err: err}
	}
	var rec model.MonthlyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.MonthlyRecord{}, false, &StorageError{Op: "decode", Path: path, Err: err}
	}
	if rec.History == nil {
		rec.History = []model.HistoryEntry{}
	}
	return rec, true, nil
}

// Save appends a history snapshot of the record's counters and overwrites the
// document. The record's Month field is stamped from the storage key it is
// written under, so saving a historical month keeps its label. The returned
// record reflects what was persisted.
func (r *RecordStore) Save(userID, month string, rec model.MonthlyRecord, action string) (model.MonthlyRecord, error) {
	if action == "" {
		action = DefaultAction
	}
	entry := model.HistoryEntry{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Action:          action,
		PendingTickets:  rec.PendingTickets,
		TotalTickets:    rec.TotalTickets,
		ResolvedTickets: rec.ResolvedTickets,
	}
	return r.saveEntry(userID, month, rec, entry)
}

// saveEntry is shared by Save and the migration path, which supplies its own
// history entry carrying the legacy payload.
func (r *RecordStore) saveEntry(userID, month string, rec model.MonthlyRecord, entry model.HistoryEntry) (model.MonthlyRecord, error) {
	if !ValidMonth(month) {
		return model.MonthlyRecord{}, fmt.Errorf("%w: bad month key %q", ErrValidation, month)
	}
	ws, err := r.ws.For(userID)
	if err != nil {
		return model.MonthlyRecord{}, err
	}

	rec.Month = month
	rec.JiraSync = nil // live snapshots never reach disk
	rec.History = append(rec.History, entry)
	if len(rec.History) > historyLimit {
		rec.History = rec.History[len(rec.History)-historyLimit:]
	}

	path := ws.RecordPath(month)
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return model.MonthlyRecord{}, &StorageError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return model.MonthlyRecord{}, &StorageError{Op: "write", Path: path, Err: err}
	}
	return rec, nil
}

// Merge overlays a partial counter update onto a record: counters present in
// the update replace the stored values, absent counters are retained.
func Merge(rec model.MonthlyRecord, u model.CounterUpdate) model.MonthlyRecord {
	if u.PendingTickets != nil {
		rec.PendingTickets = *u.PendingTickets
	}
	if u.TotalTickets != nil {
		rec.TotalTickets = *u.TotalTickets
	}
	if u.ResolvedTickets != nil {
		rec.ResolvedTickets = *u.ResolvedTickets
	}
	return rec
}

// ListMonths enumerates the month keys stored in a user's workspace in
// descending order.
func (r *RecordStore) ListMonths(userID string) ([]string, error) {
	ws, err := r.ws.For(userID)
	if err != nil {
		return nil, err
	}
	return ws.Months()
}
