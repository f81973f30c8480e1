package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is one row of the wallet transfer journal: value moved from the
// debit account to the credit account. The ledger exposes no reversal; a
// failed completion simply never writes a row.
type Transaction struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	DebitAccountID  uuid.UUID  `json:"debit_account_id"`
	CreditAccountID uuid.UUID  `json:"credit_account_id"`
	Amount          int        `json:"amount"`
	CreatedAt       time.Time  `json:"created_at"`
}
