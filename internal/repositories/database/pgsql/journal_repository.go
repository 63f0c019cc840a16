package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
)

type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalReader = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_type, from_account, to_account, amount, created_at`

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(
		&e.ID,
		&e.Type,
		&e.FromAccount,
		&e.ToAccount,
		&e.Amount,
		&e.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
	}
	return &e, nil
}

// ListEntriesByAccount returns the entries touching the account, newest
// first, plus the total count for pagination.
func (r *PgxJournalRepository) ListEntriesByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Entry, int64, error) {
	countQuery := `
		SELECT COUNT(*) FROM ledger_entries
		WHERE from_account = $1 OR to_account = $1;
	`
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, accountNumber).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count entries for account %s: %w", accountNumber, err)
	}

	query := `
		SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE from_account = $1 OR to_account = $1
		ORDER BY entry_id DESC
		LIMIT $2 OFFSET $3;
	`
	entries, err := r.queryEntries(ctx, query, accountNumber, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListEntries returns all entries, optionally filtered by type, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, typeFilter *domain.EntryType, limit, offset int) ([]domain.Entry, int64, error) {
	var total int64
	var entries []domain.Entry
	var err error

	if typeFilter != nil {
		countQuery := `SELECT COUNT(*) FROM ledger_entries WHERE entry_type = $1;`
		if err = r.Pool.QueryRow(ctx, countQuery, *typeFilter).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count entries: %w", err)
		}
		query := `
			SELECT ` + entryColumns + ` FROM ledger_entries
			WHERE entry_type = $1
			ORDER BY entry_id DESC
			LIMIT $2 OFFSET $3;
		`
		entries, err = r.queryEntries(ctx, query, *typeFilter, limit, offset)
	} else {
		countQuery := `SELECT COUNT(*) FROM ledger_entries;`
		if err = r.Pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count entries: %w", err)
		}
		query := `
			SELECT ` + entryColumns + ` FROM ledger_entries
			ORDER BY entry_id DESC
			LIMIT $1 OFFSET $2;
		`
		entries, err = r.queryEntries(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListRecentEntries returns the newest entries touching any of the given
// accounts.
func (r *PgxJournalRepository) ListRecentEntries(ctx context.Context, accountNumbers []string, limit int) ([]domain.Entry, error) {
	if len(accountNumbers) == 0 {
		return []domain.Entry{}, nil
	}
	query := `
		SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE from_account = ANY($1) OR to_account = ANY($1)
		ORDER BY entry_id DESC
		LIMIT $2;
	`
	return r.queryEntries(ctx, query, accountNumbers, limit)
}

func (r *PgxJournalRepository) CountEntries(ctx context.Context) (int64, error) {
	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries;`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return total, nil
}

func (r *PgxJournalRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}
