package domain

import "time"

// EntryType classifies a journal entry.
type EntryType string

const (
	Deposit    EntryType = "DEPOSIT"
	Withdrawal EntryType = "WITHDRAWAL"
	Transfer   EntryType = "TRANSFER"
)

// Sentinel pseudo-account numbers for the cash legs of deposits and
// withdrawals. They never appear in the account store.
const (
	DepositSource  = "DEPOSIT"
	WithdrawalSink = "WITHDRAWAL"
)

// Entry is one immutable record in the append-only ledger journal. ID is
// assigned at commit time and defines the total order of the journal;
// Timestamp is non-decreasing with ID.
type Entry struct {
	ID          int64     `json:"id"`
	Type        EntryType `json:"type"`
	FromAccount string    `json:"fromAccountNumber"`
	ToAccount   string    `json:"toAccountNumber"`
	Amount      Money     `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// Touches reports whether the entry debits or credits the given account.
func (e Entry) Touches(accountNumber string) bool {
	return e.FromAccount == accountNumber || e.ToAccount == accountNumber
}
