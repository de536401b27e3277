// Package stripepay implements the billing processor on top of Stripe.
package stripepay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrSignature is returned when a webhook payload cannot be verified.
var ErrSignature = errors.New("webhook signature verification failed")

// Config holds what the processor needs to talk to Stripe.
type Config struct {
	SecretKey     string
	WebhookSecret string
}

// Processor manages checkout, portal and webhook calls against Stripe.
type Processor struct {
	api           *client.API
	webhookSecret string
}

// New constructs a Stripe processor.
func New(cfg Config) *Processor {
	return &Processor{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateCheckout opens a subscription checkout session and returns its url.
func (p *Processor) CreateCheckout(ctx context.Context, req billingbus.CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		CustomerEmail: stripe.String(req.CustomerEmail),
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("checkout session: %w", err)
	}

	return s.URL, nil
}

// CreatePortal opens a billing portal session for the customer.
func (p *Processor) CreatePortal(ctx context.Context, customerID string, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("portal session: %w", err)
	}

	return s.URL, nil
}

// ParseEvent verifies the signature of a webhook payload and reduces it to
// a billing event.
func (p *Processor) ParseEvent(payload []byte, signature string) (billingbus.Event, error) {
	opts := webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, opts)
	if err != nil {
		return billingbus.Event{}, fmt.Errorf("%w: %w", ErrSignature, err)
	}

	return toBusEvent(ev)
}

// =============================================================================

func toBusEvent(ev stripe.Event) (billingbus.Event, error) {
	evt := billingbus.Event{
		ID:   ev.ID,
		Type: string(ev.Type),
	}

	if ev.Data == nil {
		return evt, nil
	}

	switch evt.Type {
	case billingbus.EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return billingbus.Event{}, fmt.Errorf("decode checkout session: %w", err)
		}

		if s.Customer != nil {
			evt.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			evt.SubscriptionID = s.Subscription.ID
		}

		if v := s.Metadata["userId"]; v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return billingbus.Event{}, fmt.Errorf("parse metadata userId[%s]: %w", v, err)
			}
			evt.UserID = id
		}

		if v := s.Metadata["plan"]; v != "" {
			pl, err := plan.Parse(v)
			if err != nil {
				return billingbus.Event{}, fmt.Errorf("parse metadata plan: %w", err)
			}
			evt.Plan = pl
		}

	case billingbus.EventSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return billingbus.Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		evt.SubscriptionID = s.ID
		if s.Customer != nil {
			evt.CustomerID = s.Customer.ID
		}

	case billingbus.EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return billingbus.Event{}, fmt.Errorf("decode invoice: %w", err)
		}
		if inv.Customer != nil {
			evt.CustomerID = inv.Customer.ID
		}
	}

	return evt, nil
}
