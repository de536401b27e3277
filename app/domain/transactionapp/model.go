package transactionapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/types/txtype"
)

// dateLayout is the business date format of the ledger.
const dateLayout = time.DateOnly

// Transaction represents an income or expense entry.
type Transaction struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	DateCreated string  `json:"dateCreated"`
	DateUpdated string  `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (t Transaction) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

// ToAppTransaction converts a transaction for the wire.
func ToAppTransaction(bus transactionbus.Transaction) Transaction {
	return Transaction{
		ID:          bus.ID.String(),
		OwnerID:     bus.OwnerID.String(),
		Description: bus.Description,
		Amount:      bus.Amount,
		Type:        bus.Type.String(),
		Date:        bus.Date.Format(dateLayout),
		Category:    bus.Category,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppTransactions converts a list of transactions.
func ToAppTransactions(txs []transactionbus.Transaction) []Transaction {
	app := make([]Transaction, len(txs))
	for i, tx := range txs {
		app[i] = ToAppTransaction(tx)
	}
	return app
}

// parseDate accepts a plain business date or a full timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// =============================================================================

// NewTransaction defines the data needed to record a transaction.
type NewTransaction struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Type        string  `json:"type" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Category    string  `json:"category"`
}

// Decode implements the web.Decoder interface.
func (app *NewTransaction) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTransaction) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewTransaction(ownerID uuid.UUID, app NewTransaction) (transactionbus.NewTransaction, error) {
	typ, err := txtype.Parse(app.Type)
	if err != nil {
		return transactionbus.NewTransaction{}, fmt.Errorf("parse type: %w", err)
	}

	date, err := parseDate(app.Date)
	if err != nil {
		return transactionbus.NewTransaction{}, fmt.Errorf("parse date: %w", err)
	}

	bus := transactionbus.NewTransaction{
		OwnerID:     ownerID,
		Description: app.Description,
		Amount:      app.Amount,
		Type:        typ,
		Date:        date,
		Category:    app.Category,
	}

	return bus, nil
}

// =============================================================================

// UpdateTransaction defines the data needed to update a transaction.
type UpdateTransaction struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount" validate:"omitempty,gt=0"`
	Type        *string  `json:"type"`
	Date        *string  `json:"date"`
	Category    *string  `json:"category"`
	Version     *string  `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateTransaction) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateTransaction) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateTransaction(app UpdateTransaction) (transactionbus.UpdateTransaction, error) {
	var typ *txtype.Type
	if app.Type != nil {
		t, err := txtype.Parse(*app.Type)
		if err != nil {
			return transactionbus.UpdateTransaction{}, fmt.Errorf("parse type: %w", err)
		}
		typ = &t
	}

	var date *time.Time
	if app.Date != nil {
		d, err := parseDate(*app.Date)
		if err != nil {
			return transactionbus.UpdateTransaction{}, fmt.Errorf("parse date: %w", err)
		}
		date = &d
	}

	var version *time.Time
	if app.Version != nil {
		v, err := time.Parse(time.RFC3339Nano, *app.Version)
		if err != nil {
			return transactionbus.UpdateTransaction{}, fmt.Errorf("parse version: %w", err)
		}
		version = &v
	}

	bus := transactionbus.UpdateTransaction{
		Description: app.Description,
		Amount:      app.Amount,
		Type:        typ,
		Date:        date,
		Category:    app.Category,
		Version:     version,
	}

	return bus, nil
}
