package audit

import (
	"fmt"
	"sort"

	"aiteddy-hq/guardian/pkg/safety/model"
)

const (
	// DefaultLimit is applied by the CLI when no limit is given.
	DefaultLimit = 100

	// MaxLimit is the largest page a single query may return.
	MaxLimit = 10000
)

// Validate checks a query before it reaches a backend.
func Validate(q *Query) error {
	if q == nil {
		return nil
	}
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.Kind != "" && q.Kind != KindContent && q.Kind != KindBias {
		return NewQueryError(q, fmt.Errorf("invalid kind: %s", q.Kind))
	}
	if q.MinRisk != "" {
		if _, err := model.ParseRiskLevel(q.MinRisk); err != nil {
			return NewQueryError(q, err)
		}
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}
	return nil
}

// RiskRank returns the ordinal of a risk level name, or -1 if unknown.
func RiskRank(name string) int {
	level, err := model.ParseRiskLevel(name)
	if err != nil {
		return -1
	}
	return int(level)
}

// Matches reports whether record satisfies every filter in q. Pagination
// and ordering are not considered.
func (q *Query) Matches(record *Record) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && record.AnalyzedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && record.AnalyzedAt.After(*q.EndTime) {
		return false
	}
	if q.SessionID != "" && record.SessionID != q.SessionID {
		return false
	}
	if q.Kind != "" && record.Kind != q.Kind {
		return false
	}
	if q.MinRisk != "" && RiskRank(record.RiskLevel) < RiskRank(q.MinRisk) {
		return false
	}
	if q.UnsafeOnly && record.IsSafe {
		return false
	}
	if q.BiasOnly && !record.HasBias {
		return false
	}
	return true
}

// SortRecords orders records by AnalyzedAt according to the query, newest
// first by default. Ties break on ID so the order is stable.
func SortRecords(records []*Record, order string) {
	asc := order == "asc"
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.AnalyzedAt.Equal(b.AnalyzedAt) {
			if asc {
				return a.AnalyzedAt.Before(b.AnalyzedAt)
			}
			return a.AnalyzedAt.After(b.AnalyzedAt)
		}
		return a.ID < b.ID
	})
}
