package billingbus

import (
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
)

// Set of payment processor events that change a subscription.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentFailed       = "invoice.payment_failed"
)

// Event is a verified payment processor notification reduced to the fields
// the subscription changes depend on. Which fields are set depends on Type.
type Event struct {
	ID             string
	Type           string
	UserID         uuid.UUID
	Plan           plan.Plan
	CustomerID     string
	SubscriptionID string
}

// CheckoutRequest is what the processor needs to open a subscription
// checkout page.
type CheckoutRequest struct {
	CustomerEmail string
	PriceID       string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Prices maps the paid plans to the processor's price ids.
type Prices struct {
	Pro        string
	Enterprise string
}

func (p Prices) forPlan(pl plan.Plan) string {
	switch pl {
	case plan.Pro:
		return p.Pro
	case plan.Enterprise:
		return p.Enterprise
	}
	return ""
}
