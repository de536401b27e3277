package supplierbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/name"
)

// Supplier represents a vendor the tenant buys from.
type Supplier struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      name.Name
	Contact   string
	Email     string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSupplier is what we require when adding a Supplier.
type NewSupplier struct {
	OwnerID  uuid.UUID
	Name     name.Name
	Contact  string
	Email    string
	Category string
}

// UpdateSupplier defines what information may be provided to modify an
// existing Supplier.
type UpdateSupplier struct {
	Name     *name.Name
	Contact  *string
	Email    *string
	Category *string
	Version  *time.Time
}
