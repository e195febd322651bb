package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ticket-counter/internal/model"
)

func writeLegacyFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "tickets-data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMigrator_NoLegacyFileIsNoop(t *testing.T) {
	records, _ := newTestRecordStore(t)
	m := NewMigrator(records, filepath.Join(t.TempDir(), "tickets-data.json"))

	migrated, err := m.Run()
	require.NoError(t, err)
	assert.False(t, migrated)
}

func TestMigrator_OverlaysLegacyCountersOntoEmptyMonth(t *testing.T) {
	records, _ := newTestRecordStore(t)
	legacy := writeLegacyFile(t, t.TempDir(), `{"pendingTickets":2,"totalTickets":5,"resolvedTickets":3}`)

	migrated, err := NewMigrator(records, legacy).Run()
	require.NoError(t, err)
	assert.True(t, migrated)

	rec, err := records.Get("", CurrentMonth())
	require.NoError(t, err)
	assert.Equal(t, 2, rec.PendingTickets)
	assert.Equal(t, 5, rec.TotalTickets)
	assert.Equal(t, 3, rec.ResolvedTickets)

	require.Len(t, rec.History, 1)
	entry := rec.History[0]
	assert.Equal(t, MigrationAction, entry.Action)
	assert.Equal(t, float64(5), entry.Legacy["totalTickets"], "the full legacy payload rides the entry")

	// Legacy file renamed to .backup, replacing nothing this time.
	_, err = os.Stat(legacy)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(legacy + ".backup")
	assert.NoError(t, err)
}

func TestMigrator_DoesNotClobberNonZeroMonth(t *testing.T) {
	records, _ := newTestRecordStore(t)
	month := CurrentMonth()

	rec := model.NewMonthlyRecord(month)
	rec.TotalTickets = 7
	_, err := records.Save("", month, rec, "")
	require.NoError(t, err)

	legacy := writeLegacyFile(t, t.TempDir(), `{"pendingTickets":2,"totalTickets":5,"resolvedTickets":3}`)
	migrated, err := NewMigrator(records, legacy).Run()
	require.NoError(t, err)
	assert.True(t, migrated)

	got, err := records.Get("", month)
	require.NoError(t, err)
	assert.Equal(t, 7, got.TotalTickets, "existing counters win over legacy ones")
	// The migration is still recorded even though counters were not applied.
	require.Len(t, got.History, 2)
	assert.Equal(t, MigrationAction, got.History[1].Action)
}

func TestMigrator_SecondRunIsNoop(t *testing.T) {
	records, _ := newTestRecordStore(t)
	legacy := writeLegacyFile(t, t.TempDir(), `{"pendingTickets":1,"totalTickets":1,"resolvedTickets":0}`)
	m := NewMigrator(records, legacy)

	migrated, err := m.Run()
	require.NoError(t, err)
	require.True(t, migrated)
	first, err := records.Get("", CurrentMonth())
	require.NoError(t, err)

	migrated, err = m.Run()
	require.NoError(t, err)
	assert.False(t, migrated, "the legacy file is gone, so there is nothing to migrate")

	second, err := records.Get("", CurrentMonth())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMigrator_ReplacesPriorBackup(t *testing.T) {
	records, _ := newTestRecordStore(t)
	dir := t.TempDir()
	legacy := writeLegacyFile(t, dir, `{"totalTickets":1}`)
	require.NoError(t, os.WriteFile(legacy+".backup", []byte("old backup"), 0o644))

	migrated, err := NewMigrator(records, legacy).Run()
	require.NoError(t, err)
	require.True(t, migrated)

	raw, err := os.ReadFile(legacy + ".backup")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalTickets":1}`, string(raw))
}

func TestMigrator_CorruptLegacyFileFailsSoft(t *testing.T) {
	records, _ := newTestRecordStore(t)
	legacy := writeLegacyFile(t, t.TempDir(), "{broken")

	migrated, err := NewMigrator(records, legacy).Run()
	assert.False(t, migrated)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	// The file is left in place for manual inspection.
	_, statErr := os.Stat(legacy)
	assert.NoError(t, statErr)
}
