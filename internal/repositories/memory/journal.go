package memory

import (
	"context"

	"github.com/sleepystack/vaulta/internal/core/domain"
)

// ListEntriesByAccount pages the journal entries touching the account,
// ordered by id descending, and reports the total match count.
func (s *Store) ListEntriesByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Entry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pageEntries(s.journal, limit, offset, func(e domain.Entry) bool {
		return e.Touches(accountNumber)
	})
}

// ListEntries pages the whole journal, optionally filtered by entry type,
// ordered by id descending.
func (s *Store) ListEntries(ctx context.Context, typeFilter *domain.EntryType, limit, offset int) ([]domain.Entry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pageEntries(s.journal, limit, offset, func(e domain.Entry) bool {
		return typeFilter == nil || e.Type == *typeFilter
	})
}

// ListRecentEntries returns the newest entries touching any of the given
// accounts, newest first.
func (s *Store) ListRecentEntries(ctx context.Context, accountNumbers []string, limit int) ([]domain.Entry, error) {
	wanted := make(map[string]struct{}, len(accountNumbers))
	for _, n := range accountNumbers {
		wanted[n] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Entry
	for i := len(s.journal) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.journal[i]
		if _, from := wanted[e.FromAccount]; from {
			out = append(out, e)
			continue
		}
		if _, to := wanted[e.ToAccount]; to {
			out = append(out, e)
		}
	}
	return out, nil
}

// CountEntries returns the journal length.
func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.journal)), nil
}

// pageEntries walks the journal newest-first and collects the requested
// window. The journal slice is append-only, so offsets are stable as long as
// no entry is committed mid-paging.
func pageEntries(journal []domain.Entry, limit, offset int, match func(domain.Entry) bool) ([]domain.Entry, int64, error) {
	var total int64
	var out []domain.Entry
	skipped := 0
	for i := len(journal) - 1; i >= 0; i-- {
		e := journal[i]
		if !match(e) {
			continue
		}
		total++
		if skipped < offset {
			skipped++
			continue
		}
		if limit <= 0 || len(out) < limit {
			out = append(out, e)
		}
	}
	return out, total, nil
}
