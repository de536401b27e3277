package clientbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/phone"
)

// Client represents a customer of the tenant.
type Client struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Name         name.Name
	Email        string
	Phone        phone.Null
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewClient is what we require from clients when adding a Client.
type NewClient struct {
	OwnerID      uuid.UUID
	Name         name.Name
	Email        string
	Phone        phone.Null
	Observations string
}

// UpdateClient defines what information may be provided to modify an existing
// Client. All fields are optional; Version, when set, must match the stored
// UpdatedAt.
type UpdateClient struct {
	Name         *name.Name
	Email        *string
	Phone        *phone.Null
	Observations *string
	Version      *time.Time
}
