package metabus

import (
	"time"

	"github.com/google/uuid"
)

// Config is the Meta ads account a tenant connected.
type Config struct {
	OwnerID       uuid.UUID
	AccessToken   string
	AdAccountID   string
	AdAccountName string
	UpdatedAt     time.Time
}

// NewConfig is what we require when connecting an ads account.
type NewConfig struct {
	OwnerID       uuid.UUID
	AccessToken   string
	AdAccountID   string
	AdAccountName string
}
