// Package userbus provides business access to user profiles and the
// credentials they sign in with.
package userbus

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/sdk/order"
	"github.com/jcpaschoal/jhgestor/business/sdk/page"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
	"golang.org/x/crypto/bcrypt"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound              = errors.New("user not found")
	ErrUniqueEmail           = errors.New("email is not unique")
	ErrAuthenticationFailure = errors.New("invalid credentials")
	ErrConflict              = errors.New("user was changed by someone else")
	ErrOwnerNotFound         = errors.New("owner not found")
	ErrNotOwner              = errors.New("user does not own a tenant")
)

// DefaultName is given to profiles created from an identity without one.
const DefaultName = "Usuário"

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, usr User) error
	Update(ctx context.Context, usr User, version time.Time) error
	Delete(ctx context.Context, usr User) error
	QueryByID(ctx context.Context, userID uuid.UUID) (User, error)
	QueryByEmail(ctx context.Context, email mail.Address) (User, error)
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]User, error)
	QueryByStripeCustomer(ctx context.Context, customerID string) (User, error)
	QueryByStripeSubscription(ctx context.Context, subscriptionID string) (User, error)
	QueryOwners(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]User, error)
	CountOwners(ctx context.Context, filter QueryFilter) (int, error)
	CreateIdentity(ctx context.Context, idn Identity) error
	UpdateIdentity(ctx context.Context, idn Identity) error
	DeleteIdentity(ctx context.Context, idn Identity) error
	QueryIdentityByEmail(ctx context.Context, email mail.Address) (Identity, error)
	QueryIdentityByID(ctx context.Context, identityID uuid.UUID) (Identity, error)
}

// Core manages the set of APIs for user access.
type Core struct {
	storer Storer
}

// NewCore constructs a user core API for use.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Register creates the identity of a new tenant owner and the profile that
// goes with it.
func (c *Core) Register(ctx context.Context, nu NewUser) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.register")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("generatefrompassword: %w", err)
	}

	idn := Identity{
		ID:           uuid.New(),
		Email:        nu.Email,
		PasswordHash: hash,
		Metadata: Metadata{
			Name: nu.Name.String(),
			Role: role.Admin.String(),
		},
		CreatedAt: sqldb.Now(),
	}

	if err := c.storer.CreateIdentity(ctx, idn); err != nil {
		return User{}, fmt.Errorf("createidentity: %w", err)
	}

	return c.reconcile(ctx, idn)
}

// Login checks the credentials and returns the profile they belong to,
// creating or completing it from the identity metadata when needed.
func (c *Core) Login(ctx context.Context, email mail.Address, password string) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.login")
	defer span.End()

	idn, err := c.storer.QueryIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("query: email[%s]: %w", email.Address, ErrAuthenticationFailure)
		}
		return User{}, fmt.Errorf("query: email[%s]: %w", email.Address, err)
	}

	if err := bcrypt.CompareHashAndPassword(idn.PasswordHash, []byte(password)); err != nil {
		return User{}, fmt.Errorf("comparehashandpassword: %w", ErrAuthenticationFailure)
	}

	return c.reconcile(ctx, idn)
}

// Invite adds a user to the tenant owned by nm.OwnerID.
func (c *Core) Invite(ctx context.Context, nm NewMember) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.invite")
	defer span.End()

	owner, err := c.storer.QueryByID(ctx, nm.OwnerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("query: ownerID[%s]: %w", nm.OwnerID, ErrOwnerNotFound)
		}
		return User{}, fmt.Errorf("query: ownerID[%s]: %w", nm.OwnerID, err)
	}

	if !owner.IsOwner() {
		return User{}, fmt.Errorf("owner: userID[%s]: %w", owner.ID, ErrNotOwner)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nm.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("generatefrompassword: %w", err)
	}

	usrRole := nm.Role
	if usrRole.IsZero() {
		usrRole = role.User
	}

	idn := Identity{
		ID:           uuid.New(),
		Email:        nm.Email,
		PasswordHash: hash,
		Metadata: Metadata{
			Name:    nm.Name.String(),
			Role:    usrRole.String(),
			OwnerID: owner.ID.String(),
		},
		CreatedAt: sqldb.Now(),
	}

	if err := c.storer.CreateIdentity(ctx, idn); err != nil {
		return User{}, fmt.Errorf("createidentity: %w", err)
	}

	// Members inherit the owner's subscription so the gate treats the whole
	// tenant the same way.
	idn.Metadata.Status = owner.Status.String()
	idn.Metadata.Plan = owner.Plan.String()

	return c.reconcile(ctx, idn)
}

// Update modifies information about a user.
func (c *Core) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.update")
	defer span.End()

	if uu.Version != nil && !uu.Version.Equal(usr.UpdatedAt) {
		return User{}, fmt.Errorf("version: userID[%s]: %w", usr.ID, ErrConflict)
	}

	if uu.Name != nil {
		usr.Name = *uu.Name
	}

	if uu.Email != nil {
		usr.Email = *uu.Email
	}

	if uu.Avatar != nil {
		usr.Avatar = *uu.Avatar
	}

	if uu.Password != nil || uu.Email != nil {
		idn, err := c.storer.QueryIdentityByID(ctx, usr.ID)
		if err != nil {
			return User{}, fmt.Errorf("queryidentity: userID[%s]: %w", usr.ID, err)
		}

		if uu.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*uu.Password), bcrypt.DefaultCost)
			if err != nil {
				return User{}, fmt.Errorf("generatefrompassword: %w", err)
			}
			idn.PasswordHash = hash
		}
		idn.Email = usr.Email

		if err := c.storer.UpdateIdentity(ctx, idn); err != nil {
			return User{}, fmt.Errorf("updateidentity: %w", err)
		}
	}

	return c.save(ctx, usr)
}

// Delete removes the specified user and their credentials.
func (c *Core) Delete(ctx context.Context, usr User) error {
	ctx, span := otel.AddSpan(ctx, "business.userbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, usr); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if err := c.storer.DeleteIdentity(ctx, Identity{ID: usr.ID}); err != nil {
		return fmt.Errorf("deleteidentity: %w", err)
	}

	return nil
}

// UpdateSubscription applies a billing change to the user.
func (c *Core) UpdateSubscription(ctx context.Context, usr User, us UpdateSubscription) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.updatesubscription")
	defer span.End()

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

	return c.save(ctx, usr)
}

// ConnectGoogle records the calendar authorization of the user.
func (c *Core) ConnectGoogle(ctx context.Context, usr User, gl GoogleLink) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.connectgoogle")
	defer span.End()

	expiry := gl.Expiry.UTC()

	usr.GoogleCalendarConnected = true
	usr.GoogleAccessToken = gl.AccessToken
	usr.GoogleTokenExpiry = &expiry

	return c.save(ctx, usr)
}

// DisconnectGoogle forgets the calendar authorization of the user.
func (c *Core) DisconnectGoogle(ctx context.Context, usr User) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.disconnectgoogle")
	defer span.End()

	usr.GoogleCalendarConnected = false
	usr.GoogleAccessToken = ""
	usr.GoogleTokenExpiry = nil

	return c.save(ctx, usr)
}

// QueryByID finds the user by the specified ID.
func (c *Core) QueryByID(ctx context.Context, userID uuid.UUID) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.querybyid")
	defer span.End()

	usr, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	return usr, nil
}

// QueryByEmail finds the user by a specified user email.
func (c *Core) QueryByEmail(ctx context.Context, email mail.Address) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.querybyemail")
	defer span.End()

	usr, err := c.storer.QueryByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("query: email[%s]: %w", email.Address, err)
	}

	return usr, nil
}

// QueryByOwner returns every user of the tenant, the owner included, ordered
// by name.
func (c *Core) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.querybyowner")
	defer span.End()

	users, err := c.storer.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return users, nil
}

// QueryByStripeCustomer finds the user billed under the customer id.
func (c *Core) QueryByStripeCustomer(ctx context.Context, customerID string) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.querybystripecustomer")
	defer span.End()

	usr, err := c.storer.QueryByStripeCustomer(ctx, customerID)
	if err != nil {
		return User{}, fmt.Errorf("query: customer[%s]: %w", customerID, err)
	}

	return usr, nil
}

// QueryByStripeSubscription finds the user holding the subscription id.
func (c *Core) QueryByStripeSubscription(ctx context.Context, subscriptionID string) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.querybystripesubscription")
	defer span.End()

	usr, err := c.storer.QueryByStripeSubscription(ctx, subscriptionID)
	if err != nil {
		return User{}, fmt.Errorf("query: subscription[%s]: %w", subscriptionID, err)
	}

	return usr, nil
}

// QueryOwners retrieves a page of tenant owners.
func (c *Core) QueryOwners(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.queryowners")
	defer span.End()

	users, err := c.storer.QueryOwners(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return users, nil
}

// CountOwners returns the number of tenant owners matching the filter.
func (c *Core) CountOwners(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.countowners")
	defer span.End()

	return c.storer.CountOwners(ctx, filter)
}

// =============================================================================

// reconcile makes sure a complete profile exists for the identity. Fields the
// profile already has win; metadata only fills what is missing.
func (c *Core) reconcile(ctx context.Context, idn Identity) (User, error) {
	usr, err := c.storer.QueryByID(ctx, idn.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		usr = fromMetadata(idn)
		if err := c.storer.Create(ctx, usr); err != nil {
			return User{}, fmt.Errorf("create: %w", err)
		}
		return usr, nil

	case err != nil:
		return User{}, fmt.Errorf("query: userID[%s]: %w", idn.ID, err)
	}

	filled, changed := backfill(usr, idn)
	if !changed {
		return usr, nil
	}

	return c.save(ctx, filled)
}

func (c *Core) save(ctx context.Context, usr User) (User, error) {
	version := usr.UpdatedAt
	usr.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.Update(ctx, usr, version); err != nil {
		return User{}, fmt.Errorf("update: %w", err)
	}

	return usr, nil
}

func fromMetadata(idn Identity) User {
	now := sqldb.Now()

	usr := User{
		ID:        idn.ID,
		Email:     idn.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	usr, _ = backfill(usr, idn)

	return usr
}

// backfill fills the zero valued fields of usr from the identity metadata,
// falling back to the defaults of a fresh tenant owner.
func backfill(usr User, idn Identity) (User, bool) {
	md := idn.Metadata
	var changed bool

	if usr.Name.String() == "" {
		nme, err := name.Parse(md.Name)
		if err != nil {
			nme = name.MustParse(DefaultName)
		}
		usr.Name = nme
		changed = true
	}

	if usr.Email.Address == "" {
		usr.Email = idn.Email
		changed = true
	}

	if usr.Role.IsZero() {
		r, err := role.Parse(md.Role)
		if err != nil {
			r = role.Admin
		}
		usr.Role = r
		changed = true
	}

	if usr.OwnerID == uuid.Nil {
		ownerID, err := uuid.Parse(md.OwnerID)
		if err != nil {
			ownerID = usr.ID
		}
		usr.OwnerID = ownerID
		changed = true
	}

	if usr.Status.IsZero() {
		s, err := status.Parse(md.Status)
		if err != nil {
			s = status.Active
		}
		usr.Status = s
		changed = true
	}

	if usr.Plan.IsZero() {
		p, err := plan.Parse(md.Plan)
		if err != nil {
			p = plan.Free
		}
		usr.Plan = p
		changed = true
	}

	return usr, changed
}
