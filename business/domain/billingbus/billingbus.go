// Package billingbus provides the subscription lifecycle of a tenant: opening
// checkout and portal pages and applying the payment processor's events.
package billingbus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// Set of error variables for billing operations.
var (
	ErrUnknownPrice = errors.New("no price configured for plan")
	ErrNoCustomer   = errors.New("user has no payment customer yet, subscribe first")
	ErrMissingUser  = errors.New("user id is required")
)

// Processor is the payment processor behind checkout and portal pages.
type Processor interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortal(ctx context.Context, customerID string, returnURL string) (string, error)
}

// UserStore is the part of the user core billing reads and writes.
type UserStore interface {
	QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error)
	QueryByStripeCustomer(ctx context.Context, customerID string) (userbus.User, error)
	QueryByStripeSubscription(ctx context.Context, subscriptionID string) (userbus.User, error)
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error)
	UpdateSubscription(ctx context.Context, usr userbus.User, us userbus.UpdateSubscription) (userbus.User, error)
}

// Core manages the set of APIs for billing.
type Core struct {
	log       *logger.Logger
	users     UserStore
	processor Processor
	prices    Prices
}

// NewCore constructs a billing core API for use.
func NewCore(log *logger.Logger, users UserStore, processor Processor, prices Prices) *Core {
	return &Core{
		log:       log,
		users:     users,
		processor: processor,
		prices:    prices,
	}
}

// Checkout opens a subscription checkout for the user and returns the page
// to send them to. origin is the address of the application the user came
// from.
func (c *Core) Checkout(ctx context.Context, userID uuid.UUID, pl plan.Plan, origin string) (string, error) {
	ctx, span := otel.AddSpan(ctx, "business.billingbus.checkout")
	defer span.End()

	if userID == uuid.Nil {
		return "", ErrMissingUser
	}

	priceID := c.prices.forPlan(pl)
	if priceID == "" {
		return "", fmt.Errorf("plan[%s]: %w", pl, ErrUnknownPrice)
	}

	usr, err := c.users.QueryByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	origin = strings.TrimRight(origin, "/")

	req := CheckoutRequest{
		CustomerEmail: usr.Email.Address,
		PriceID:       priceID,
		SuccessURL:    origin + "/billing?success=true",
		CancelURL:     origin + "/billing?canceled=true",
		Metadata: map[string]string{
			"userId": userID.String(),
			"plan":   pl.String(),
		},
	}

	url, err := c.processor.CreateCheckout(ctx, req)
	if err != nil {
		return "", fmt.Errorf("checkout: userID[%s]: %w", userID, err)
	}

	c.log.Info(ctx, "billing: checkout created", "userID", userID, "plan", pl, "priceID", priceID)

	return url, nil
}

// Portal opens the processor's self service page for a user that already
// subscribed.
func (c *Core) Portal(ctx context.Context, userID uuid.UUID, origin string) (string, error) {
	ctx, span := otel.AddSpan(ctx, "business.billingbus.portal")
	defer span.End()

	if userID == uuid.Nil {
		return "", ErrMissingUser
	}

	usr, err := c.users.QueryByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	if usr.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}

	url, err := c.processor.CreatePortal(ctx, usr.StripeCustomerID, strings.TrimRight(origin, "/")+"/billing")
	if err != nil {
		return "", fmt.Errorf("portal: userID[%s]: %w", userID, err)
	}

	return url, nil
}

// HandleEvent applies a processor event to the subscribing user and the rest
// of their tenant. Events of other types, and events about users we do not
// know, are acknowledged without changes.
func (c *Core) HandleEvent(ctx context.Context, evt Event) error {
	ctx, span := otel.AddSpan(ctx, "business.billingbus.handleevent")
	defer span.End()

	var (
		usr userbus.User
		us  userbus.UpdateSubscription
		err error
	)

	switch evt.Type {
	case EventCheckoutCompleted:
		usr, err = c.users.QueryByID(ctx, evt.UserID)
		pl := evt.Plan
		if pl.IsZero() {
			pl = plan.Pro
		}
		us = userbus.UpdateSubscription{
			Plan:                 &pl,
			Status:               &status.Active,
			StripeCustomerID:     &evt.CustomerID,
			StripeSubscriptionID: &evt.SubscriptionID,
		}

	case EventSubscriptionDeleted:
		usr, err = c.users.QueryByStripeSubscription(ctx, evt.SubscriptionID)
		us = userbus.UpdateSubscription{
			Plan:   &plan.Free,
			Status: &status.Blocked,
		}

	case EventPaymentFailed:
		usr, err = c.users.QueryByStripeCustomer(ctx, evt.CustomerID)
		us = userbus.UpdateSubscription{
			Status: &status.PastDue,
		}

	default:
		c.log.Debug(ctx, "billing: event ignored", "eventID", evt.ID, "type", evt.Type)
		return nil
	}

	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			c.log.Warn(ctx, "billing: event for unknown user", "eventID", evt.ID, "type", evt.Type,
				"userID", evt.UserID, "customerID", evt.CustomerID, "subscriptionID", evt.SubscriptionID)
			return nil
		}
		return fmt.Errorf("query: event[%s]: %w", evt.ID, err)
	}

	usr, err = c.users.UpdateSubscription(ctx, usr, us)
	if err != nil {
		return fmt.Errorf("update: userID[%s]: %w", usr.ID, err)
	}

	c.log.Info(ctx, "billing: subscription changed", "eventID", evt.ID, "type", evt.Type,
		"userID", usr.ID, "plan", usr.Plan, "status", usr.Status)

	if err := c.applyToTeam(ctx, usr); err != nil {
		return fmt.Errorf("team: ownerID[%s]: %w", usr.OwnerID, err)
	}

	return nil
}

// applyToTeam copies the owner's plan and status to the members of the
// tenant, since the access gate reads them from each member's own profile.
func (c *Core) applyToTeam(ctx context.Context, owner userbus.User) error {
	if !owner.IsOwner() {
		return nil
	}

	team, err := c.users.QueryByOwner(ctx, owner.ID)
	if err != nil {
		return err
	}

	us := userbus.UpdateSubscription{
		Plan:   &owner.Plan,
		Status: &owner.Status,
	}

	for _, m := range team {
		if m.ID == owner.ID {
			continue
		}
		if m.Plan == owner.Plan && m.Status == owner.Status {
			continue
		}
		if _, err := c.users.UpdateSubscription(ctx, m, us); err != nil {
			return fmt.Errorf("update: userID[%s]: %w", m.ID, err)
		}
	}

	return nil
}
