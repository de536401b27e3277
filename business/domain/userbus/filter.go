package userbus

import (
	"net/mail"
	"time"

	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/status"
)

// QueryFilter narrows the tenant owner listing used by the admin tooling.
type QueryFilter struct {
	Name           *string
	Email          *mail.Address
	Status         *status.Status
	Plan           *plan.Plan
	StartCreatedAt *time.Time
	EndCreatedAt   *time.Time
}
