package billingbus_test

import (
	"context"
	"errors"
	"net/mail"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

type users struct {
	mu   sync.Mutex
	byID map[uuid.UUID]userbus.User
}

func newUsers(usrs ...userbus.User) *users {
	u := users{byID: make(map[uuid.UUID]userbus.User)}
	for _, usr := range usrs {
		u.byID[usr.ID] = usr
	}
	return &u
}

func (u *users) get(id uuid.UUID) userbus.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.byID[id]
}

func (u *users) find(match func(userbus.User) bool) (userbus.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, usr := range u.byID {
		if match(usr) {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

func (u *users) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	return u.find(func(usr userbus.User) bool { return usr.ID == userID })
}

func (u *users) QueryByStripeCustomer(ctx context.Context, customerID string) (userbus.User, error) {
	return u.find(func(usr userbus.User) bool { return usr.StripeCustomerID == customerID })
}

func (u *users) QueryByStripeSubscription(ctx context.Context, subscriptionID string) (userbus.User, error) {
	return u.find(func(usr userbus.User) bool { return usr.StripeSubscriptionID == subscriptionID })
}

func (u *users) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var out []userbus.User
	for _, usr := range u.byID {
		if usr.OwnerID == ownerID {
			out = append(out, usr)
		}
	}
	return out, nil
}

func (u *users) UpdateSubscription(ctx context.Context, usr userbus.User, us userbus.UpdateSubscription) (userbus.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if us.Plan != nil {
		usr.Plan = *us.Plan
	}
	if us.Status != nil {
		usr.Status = *us.Status
	}
	if us.StripeCustomerID != nil {
		usr.StripeCustomerID = *us.StripeCustomerID
	}
	if us.StripeSubscriptionID != nil {
		usr.StripeSubscriptionID = *us.StripeSubscriptionID
	}
	u.byID[usr.ID] = usr

	return usr, nil
}

type processor struct {
	checkout billingbus.CheckoutRequest
	customer string
	returnTo string
	err      error
}

func (p *processor) CreateCheckout(ctx context.Context, req billingbus.CheckoutRequest) (string, error) {
	p.checkout = req
	return "https://pay.example.com/c/1", p.err
}

func (p *processor) CreatePortal(ctx context.Context, customerID string, returnURL string) (string, error) {
	p.customer = customerID
	p.returnTo = returnURL
	return "https://pay.example.com/p/1", p.err
}

func tenant() (userbus.User, userbus.User) {
	ownerID := uuid.New()

	owner := userbus.User{
		ID:      ownerID,
		OwnerID: ownerID,
		Email:   mail.Address{Address: "owner@example.com"},
		Status:  status.Active,
		Plan:    plan.Free,
	}

	member := userbus.User{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Email:   mail.Address{Address: "member@example.com"},
		Status:  status.Active,
		Plan:    plan.Free,
	}

	return owner, member
}

var prices = billingbus.Prices{Pro: "price_pro", Enterprise: "price_ent"}

func Test_Checkout(t *testing.T) {
	owner, _ := tenant()
	p := processor{}
	core := billingbus.NewCore(logger.Discard(), newUsers(owner), &p, prices)

	url, err := core.Checkout(context.Background(), owner.ID, plan.Enterprise, "https://app.example.com/")
	if err != nil {
		t.Fatalf("Should be able to open a checkout: %s", err)
	}
	if url == "" {
		t.Fatal("Should get a url")
	}

	req := p.checkout
	if req.PriceID != "price_ent" || req.CustomerEmail != "owner@example.com" {
		t.Errorf("request: got %+v", req)
	}
	if req.SuccessURL != "https://app.example.com/billing?success=true" || req.CancelURL != "https://app.example.com/billing?canceled=true" {
		t.Errorf("urls: got %q %q", req.SuccessURL, req.CancelURL)
	}
	if req.Metadata["userId"] != owner.ID.String() || req.Metadata["plan"] != "ENTERPRISE" {
		t.Errorf("metadata: got %v", req.Metadata)
	}

	if _, err := core.Checkout(context.Background(), owner.ID, plan.Free, "https://app.example.com"); !errors.Is(err, billingbus.ErrUnknownPrice) {
		t.Errorf("Should refuse a plan without price, got %v", err)
	}

	if _, err := core.Checkout(context.Background(), uuid.Nil, plan.Pro, "https://app.example.com"); !errors.Is(err, billingbus.ErrMissingUser) {
		t.Errorf("Should require a user, got %v", err)
	}
}

func Test_Portal(t *testing.T) {
	owner, _ := tenant()
	p := processor{}
	core := billingbus.NewCore(logger.Discard(), newUsers(owner), &p, prices)

	if _, err := core.Portal(context.Background(), owner.ID, "https://app.example.com"); !errors.Is(err, billingbus.ErrNoCustomer) {
		t.Fatalf("Should require a customer, got %v", err)
	}

	owner.StripeCustomerID = "cus_1"
	core = billingbus.NewCore(logger.Discard(), newUsers(owner), &p, prices)

	if _, err := core.Portal(context.Background(), owner.ID, "https://app.example.com"); err != nil {
		t.Fatalf("Should open the portal: %s", err)
	}
	if p.customer != "cus_1" || p.returnTo != "https://app.example.com/billing" {
		t.Errorf("got customer %q return %q", p.customer, p.returnTo)
	}
}

func Test_HandleEvent(t *testing.T) {
	owner, member := tenant()
	store := newUsers(owner, member)
	core := billingbus.NewCore(logger.Discard(), store, &processor{}, prices)
	ctx := context.Background()

	t.Run("checkout-completed", func(t *testing.T) {
		evt := billingbus.Event{
			ID:             "evt_1",
			Type:           billingbus.EventCheckoutCompleted,
			UserID:         owner.ID,
			Plan:           plan.Pro,
			CustomerID:     "cus_1",
			SubscriptionID: "sub_1",
		}
		if err := core.HandleEvent(ctx, evt); err != nil {
			t.Fatalf("Should apply the event: %s", err)
		}

		got := store.get(owner.ID)
		if got.Plan != plan.Pro || got.Status != status.Active || got.StripeCustomerID != "cus_1" || got.StripeSubscriptionID != "sub_1" {
			t.Errorf("owner: got %+v", got)
		}
		if m := store.get(member.ID); m.Plan != plan.Pro {
			t.Errorf("Should carry the plan to the team, got %s", m.Plan)
		}
	})

	t.Run("payment-failed", func(t *testing.T) {
		evt := billingbus.Event{ID: "evt_2", Type: billingbus.EventPaymentFailed, CustomerID: "cus_1"}
		if err := core.HandleEvent(ctx, evt); err != nil {
			t.Fatalf("Should apply the event: %s", err)
		}

		if got := store.get(owner.ID); got.Status != status.PastDue || got.Plan != plan.Pro {
			t.Errorf("owner: got status %s plan %s", got.Status, got.Plan)
		}
	})

	t.Run("subscription-deleted", func(t *testing.T) {
		evt := billingbus.Event{ID: "evt_3", Type: billingbus.EventSubscriptionDeleted, SubscriptionID: "sub_1"}
		if err := core.HandleEvent(ctx, evt); err != nil {
			t.Fatalf("Should apply the event: %s", err)
		}

		if got := store.get(owner.ID); got.Status != status.Blocked || got.Plan != plan.Free {
			t.Errorf("owner: got status %s plan %s", got.Status, got.Plan)
		}
		if m := store.get(member.ID); m.Status != status.Blocked {
			t.Errorf("Should block the team, got %s", m.Status)
		}
	})

	t.Run("unknown-user", func(t *testing.T) {
		evt := billingbus.Event{ID: "evt_4", Type: billingbus.EventPaymentFailed, CustomerID: "cus_nobody"}
		if err := core.HandleEvent(ctx, evt); err != nil {
			t.Fatalf("Should acknowledge the event: %s", err)
		}
	})

	t.Run("ignored", func(t *testing.T) {
		if err := core.HandleEvent(ctx, billingbus.Event{ID: "evt_5", Type: "customer.created"}); err != nil {
			t.Fatalf("Should ignore the event: %s", err)
		}
	})
}
