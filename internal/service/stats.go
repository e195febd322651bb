// Package service contains read-side logic built on top of the repositories.
package service

import (
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-counter/internal/repository"
)

// MonthTotals is one row of the cross-month summary.
type MonthTotals struct {
	Month           string `json:"month"`
	PendingTickets  int    `json:"pendingTickets"`
	TotalTickets    int    `json:"totalTickets"`
	ResolvedTickets int    `json:"resolvedTickets"`
}

// Summary aggregates a user's counters across every stored month.
type Summary struct {
	TotalTickets    int           `json:"totalTickets"`
	PendingTickets  int           `json:"pendingTickets"`
	ResolvedTickets int           `json:"resolvedTickets"`
	Months          []MonthTotals `json:"months"`
}

// Stats computes summaries over a user's monthly records. It consumes the
// record store read-only.
type Stats struct {
	records *repository.RecordStore
	log     *zap.Logger
}

func NewStats(records *repository.RecordStore, log *zap.Logger) *Stats {
	return &Stats{records: records, log: log}
}

// Summarize loads every monthly record for the user in descending month
// order and sums the counters. A record that fails to load (corrupt JSON,
// unreadable file) is skipped with a warning rather than failing the whole
// aggregate.
func (s *Stats) Summarize(userID string) (Summary, error) {
	months, err := s.records.ListMonths(userID)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Months: make([]MonthTotals, 0, len(months))}
	for _, month := range months {
		rec, err := s.records.Get(userID, month)
		if err != nil {
			s.log.Warn("skipping unreadable month record",
				zap.String("month", month), zap.Error(err))
			continue
		}
		out.TotalTickets += rec.TotalTickets
		out.PendingTickets += rec.PendingTickets
		out.ResolvedTickets += rec.ResolvedTickets
		out.Months = append(out.Months, MonthTotals{
			Month:           month,
			PendingTickets:  rec.PendingTickets,
			TotalTickets:    rec.TotalTickets,
			ResolvedTickets: rec.ResolvedTickets,
		})
	}
	return out, nil
}
