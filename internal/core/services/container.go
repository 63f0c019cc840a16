package services

import (
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
)

// NewServiceContainer wires the service layer against a ledger repository and
// a user repository. Both backends (memory and pgsql) plug in here.
func NewServiceContainer(ledgerRepo portsrepo.LedgerRepository, userRepo portsrepo.UserRepository) *portssvc.ServiceContainer {
	userSvc := NewUserService(userRepo, ledgerRepo)
	txnSvc := NewTransactionService(ledgerRepo, userRepo)
	accountSvc := NewAccountService(ledgerRepo, userRepo, txnSvc)
	querySvc := NewQueryService(ledgerRepo, userRepo)

	return &portssvc.ServiceContainer{
		User:        userSvc,
		Account:     accountSvc,
		Transaction: txnSvc,
		Query:       querySvc,
	}
}
