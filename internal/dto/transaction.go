package dto

import (
	"time"

	"github.com/sleepystack/vaulta/internal/core/domain"
)

// TransactionRequest covers deposit, withdraw and transfer submissions.
// TargetAccountNumber is only consulted for transfers.
type TransactionRequest struct {
	AccountNumber       string       `json:"accountNumber" binding:"required,accountnumber"`
	TargetAccountNumber string       `json:"targetAccountNumber" binding:"omitempty,accountnumber"`
	Amount              domain.Money `json:"amount" binding:"required,gt=0"`
}

// TransactionResponse is the wire shape of one committed journal entry.
type TransactionResponse struct {
	ID                int64        `json:"id"`
	Type              string       `json:"type"`
	Amount            domain.Money `json:"amount"`
	FromAccountNumber string       `json:"fromAccountNumber"`
	ToAccountNumber   string       `json:"toAccountNumber"`
	Timestamp         time.Time    `json:"timestamp"`
}

// ToTransactionResponse maps a journal entry to its wire shape.
func ToTransactionResponse(entry domain.Entry) TransactionResponse {
	return TransactionResponse{
		ID:                entry.ID,
		Type:              string(entry.Type),
		Amount:            entry.Amount,
		FromAccountNumber: entry.FromAccount,
		ToAccountNumber:   entry.ToAccount,
		Timestamp:         entry.Timestamp,
	}
}

// ToTransactionResponses maps a page of journal entries.
func ToTransactionResponses(entries []domain.Entry) []TransactionResponse {
	out := make([]TransactionResponse, len(entries))
	for i, entry := range entries {
		out[i] = ToTransactionResponse(entry)
	}
	return out
}
