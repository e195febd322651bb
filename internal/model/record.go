package model

// MonthlyRecord is the per-user, per-calendar-month ticket document. One JSON
// file per (workspace, month) pair; the whole document is rewritten on every
// save. The JSON field names match the wire format the frontend already
// speaks, so they stay camelCase.
type MonthlyRecord struct {
	PendingTickets  int            `json:"pendingTickets"`
	TotalTickets    int            `json:"totalTickets"`
	ResolvedTickets int            `json:"resolvedTickets"`
	Month           string         `json:"month"`
	History         []HistoryEntry `json:"history"`
	// JiraSync carries the result of the most recent live fetch. It is
	// attached to read responses only and never written to disk.
	JiraSync *JiraSnapshot `json:"jiraSync,omitempty"`
}

// NewMonthlyRecord returns the zero-valued record for a month. A missing
// record and an all-zero record are indistinguishable on purpose: empty state
// is valid state.
func NewMonthlyRecord(month string) MonthlyRecord {
	return MonthlyRecord{Month: month, History: []HistoryEntry{}}
}

// ZeroCounters reports whether all three counters are zero.
func (r MonthlyRecord) ZeroCounters() bool {
	return r.PendingTickets == 0 && r.TotalTickets == 0 && r.ResolvedTickets == 0
}

// HistoryEntry is an immutable snapshot of the counters at save time. Entries
// are only ever appended; the store trims the sequence to the most recent
// 1000 after each append.
type HistoryEntry struct {
	Timestamp       string `json:"timestamp"`
	Action          string `json:"action"`
	PendingTickets  int    `json:"pendingTickets"`
	TotalTickets    int    `json:"totalTickets"`
	ResolvedTickets int    `json:"resolvedTickets"`
	// Legacy holds the full payload of the pre-monthly store on the
	// "migrated_from_old_format" entry. Empty everywhere else.
	Legacy map[string]any `json:"data,omitempty"`
}

// CounterUpdate is a partial update from a client that may report only a
// subset of counters. Pointer fields distinguish "not sent" from an explicit
// zero: absent counters keep their stored values, present ones replace them.
type CounterUpdate struct {
	PendingTickets  *int   `json:"pendingTickets"`
	TotalTickets    *int   `json:"totalTickets"`
	ResolvedTickets *int   `json:"resolvedTickets"`
	Action          string `json:"action"`
}
