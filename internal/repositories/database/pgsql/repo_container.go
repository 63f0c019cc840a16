package pgsql

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
)

// RepositoryProvider bundles the PostgreSQL-backed repositories.
type RepositoryProvider struct {
	Ledger portsrepo.LedgerRepository
	Users  portsrepo.UserRepository
}

func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) RepositoryProvider {
	return RepositoryProvider{
		Ledger: newPgxLedgerRepository(dbPool, lockTimeout),
		Users:  newPgxUserRepository(dbPool),
	}
}
