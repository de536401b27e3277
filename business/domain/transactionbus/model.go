package transactionbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/txtype"
)

// Transaction is an income or expense entry of the tenant's ledger. Date is
// the business date the money moved, independent of when it was recorded.
type Transaction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Description string
	Amount      float64
	Type        txtype.Type
	Date        time.Time
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTransaction is what we require when recording a Transaction.
type NewTransaction struct {
	OwnerID     uuid.UUID
	Description string
	Amount      float64
	Type        txtype.Type
	Date        time.Time
	Category    string
}

// UpdateTransaction defines what information may be provided to modify an
// existing Transaction.
type UpdateTransaction struct {
	Description *string
	Amount      *float64
	Type        *txtype.Type
	Date        *time.Time
	Category    *string
	Version     *time.Time
}

// Totals summarizes a ledger.
type Totals struct {
	Income  float64
	Expense float64
}

// Balance returns income minus expense.
func (t Totals) Balance() float64 {
	return t.Income - t.Expense
}

// Summarize adds up a set of transactions by type.
func Summarize(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case txtype.Income:
			t.Income += tx.Amount
		case txtype.Expense:
			t.Expense += tx.Amount
		}
	}
	return t
}
