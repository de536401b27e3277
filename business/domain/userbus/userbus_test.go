package userbus_test

import (
	"context"
	"errors"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/order"
	"github.com/jcpaschoal/jhgestor/business/sdk/page"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/business/types/status"
)

type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]userbus.User
	identities map[uuid.UUID]userbus.Identity
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]userbus.User),
		identities: make(map[uuid.UUID]userbus.Identity),
	}
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) { return m, nil }

func (m *memStore) Create(ctx context.Context, usr userbus.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[usr.ID] = usr
	return nil
}

func (m *memStore) Update(ctx context.Context, usr userbus.User, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[usr.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return userbus.ErrConflict
	}
	m.users[usr.ID] = usr
	return nil
}

func (m *memStore) Delete(ctx context.Context, usr userbus.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, usr.ID)
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	usr, ok := m.users[userID]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func (m *memStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, usr := range m.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

func (m *memStore) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []userbus.User
	for _, usr := range m.users {
		if usr.OwnerID == ownerID {
			users = append(users, usr)
		}
	}
	return users, nil
}

func (m *memStore) QueryByStripeCustomer(ctx context.Context, customerID string) (userbus.User, error) {
	return userbus.User{}, userbus.ErrNotFound
}

func (m *memStore) QueryByStripeSubscription(ctx context.Context, subscriptionID string) (userbus.User, error) {
	return userbus.User{}, userbus.ErrNotFound
}

func (m *memStore) QueryOwners(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	return nil, nil
}

func (m *memStore) CountOwners(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return 0, nil
}

func (m *memStore) CreateIdentity(ctx context.Context, idn userbus.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.identities {
		if cur.Email.Address == idn.Email.Address {
			return userbus.ErrUniqueEmail
		}
	}
	m.identities[idn.ID] = idn
	return nil
}

func (m *memStore) UpdateIdentity(ctx context.Context, idn userbus.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[idn.ID] = idn
	return nil
}

func (m *memStore) DeleteIdentity(ctx context.Context, idn userbus.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.identities, idn.ID)
	return nil
}

func (m *memStore) QueryIdentityByEmail(ctx context.Context, email mail.Address) (userbus.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, idn := range m.identities {
		if idn.Email.Address == email.Address {
			return idn, nil
		}
	}
	return userbus.Identity{}, userbus.ErrNotFound
}

func (m *memStore) QueryIdentityByID(ctx context.Context, identityID uuid.UUID) (userbus.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idn, ok := m.identities[identityID]
	if !ok {
		return userbus.Identity{}, userbus.ErrNotFound
	}
	return idn, nil
}

// =============================================================================

func Test_RegisterLogin(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := userbus.NewCore(store)

	email := mail.Address{Address: "ana@example.com"}

	usr, err := core.Register(ctx, userbus.NewUser{
		Name:     name.MustParse("Ana"),
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Should be able to register: %s", err)
	}

	if !usr.IsOwner() {
		t.Errorf("Should own the tenant: owner %s id %s", usr.OwnerID, usr.ID)
	}
	if usr.Role != role.Admin || usr.Status != status.Active || usr.Plan != plan.Free {
		t.Errorf("Should get owner defaults: role %s status %s plan %s", usr.Role, usr.Status, usr.Plan)
	}

	t.Run("valid", func(t *testing.T) {
		got, err := core.Login(ctx, email, "secret123")
		if err != nil {
			t.Fatalf("Should be able to login: %s", err)
		}
		if got.ID != usr.ID {
			t.Errorf("got %s, want %s", got.ID, usr.ID)
		}
	})

	t.Run("bad-password", func(t *testing.T) {
		_, err := core.Login(ctx, email, "nope")
		if !errors.Is(err, userbus.ErrAuthenticationFailure) {
			t.Errorf("got %v, want %v", err, userbus.ErrAuthenticationFailure)
		}
	})

	t.Run("unknown-email", func(t *testing.T) {
		_, err := core.Login(ctx, mail.Address{Address: "who@example.com"}, "secret123")
		if !errors.Is(err, userbus.ErrAuthenticationFailure) {
			t.Errorf("got %v, want %v", err, userbus.ErrAuthenticationFailure)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := core.Register(ctx, userbus.NewUser{Name: name.MustParse("Ana"), Email: email, Password: "x"})
		if !errors.Is(err, userbus.ErrUniqueEmail) {
			t.Errorf("got %v, want %v", err, userbus.ErrUniqueEmail)
		}
	})
}

func Test_LoginProfileWins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := userbus.NewCore(store)

	usr, err := core.Register(ctx, userbus.NewUser{
		Name:     name.MustParse("Bruno"),
		Email:    mail.Address{Address: "bruno@example.com"},
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Should be able to register: %s", err)
	}

	// The profile moved on after sign up; the metadata must not drag it back.
	pro := plan.Pro
	if _, err := core.UpdateSubscription(ctx, usr, userbus.UpdateSubscription{Plan: &pro}); err != nil {
		t.Fatalf("Should be able to update subscription: %s", err)
	}

	got, err := core.Login(ctx, usr.Email, "secret123")
	if err != nil {
		t.Fatalf("Should be able to login: %s", err)
	}
	if got.Plan != plan.Pro {
		t.Errorf("got plan %s, want %s", got.Plan, plan.Pro)
	}
}

func Test_LoginBackfillsMissingProfile(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := userbus.NewCore(store)

	// An identity that exists without a profile, as left behind by a provider
	// that created the account elsewhere.
	if _, err := core.Register(ctx, userbus.NewUser{
		Name:     name.MustParse("Carla"),
		Email:    mail.Address{Address: "carla@example.com"},
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Should be able to register: %s", err)
	}
	for id := range store.users {
		delete(store.users, id)
	}

	got, err := core.Login(ctx, mail.Address{Address: "carla@example.com"}, "secret123")
	if err != nil {
		t.Fatalf("Should be able to login: %s", err)
	}
	if got.Name.String() != "Carla" {
		t.Errorf("got name %q, want %q", got.Name, "Carla")
	}
	if !got.IsOwner() {
		t.Errorf("Should fall back to owning the tenant")
	}
}

func Test_Invite(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := userbus.NewCore(store)

	owner, err := core.Register(ctx, userbus.NewUser{
		Name:     name.MustParse("Dora"),
		Email:    mail.Address{Address: "dora@example.com"},
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Should be able to register: %s", err)
	}

	member, err := core.Invite(ctx, userbus.NewMember{
		OwnerID:  owner.ID,
		Name:     name.MustParse("Edu"),
		Email:    mail.Address{Address: "edu@example.com"},
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Should be able to invite: %s", err)
	}

	if member.OwnerID != owner.ID {
		t.Errorf("got owner %s, want %s", member.OwnerID, owner.ID)
	}
	if member.Role != role.User {
		t.Errorf("got role %s, want %s", member.Role, role.User)
	}

	t.Run("member-cannot-own", func(t *testing.T) {
		_, err := core.Invite(ctx, userbus.NewMember{
			OwnerID:  member.ID,
			Name:     name.MustParse("Fabi"),
			Email:    mail.Address{Address: "fabi@example.com"},
			Password: "secret123",
		})
		if !errors.Is(err, userbus.ErrNotOwner) {
			t.Errorf("got %v, want %v", err, userbus.ErrNotOwner)
		}
	})

	t.Run("missing-owner", func(t *testing.T) {
		_, err := core.Invite(ctx, userbus.NewMember{
			OwnerID:  uuid.New(),
			Name:     name.MustParse("Gil"),
			Email:    mail.Address{Address: "gil@example.com"},
			Password: "secret123",
		})
		if !errors.Is(err, userbus.ErrOwnerNotFound) {
			t.Errorf("got %v, want %v", err, userbus.ErrOwnerNotFound)
		}
	})
}

func Test_UpdateVersion(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := userbus.NewCore(store)

	usr, err := core.Register(ctx, userbus.NewUser{
		Name:     name.MustParse("Hugo"),
		Email:    mail.Address{Address: "hugo@example.com"},
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Should be able to register: %s", err)
	}

	stale := usr.UpdatedAt.Add(-time.Minute)
	nme := name.MustParse("Hugo B")

	if _, err := core.Update(ctx, usr, userbus.UpdateUser{Name: &nme, Version: &stale}); !errors.Is(err, userbus.ErrConflict) {
		t.Errorf("got %v, want %v", err, userbus.ErrConflict)
	}

	version := usr.UpdatedAt
	got, err := core.Update(ctx, usr, userbus.UpdateUser{Name: &nme, Version: &version})
	if err != nil {
		t.Fatalf("Should be able to update: %s", err)
	}
	if got.Name != nme {
		t.Errorf("got %s, want %s", got.Name, nme)
	}

	// The row moved on, so the old copy must lose.
	if _, err := core.Update(ctx, usr, userbus.UpdateUser{Name: &nme}); !errors.Is(err, userbus.ErrConflict) {
		t.Errorf("got %v, want %v", err, userbus.ErrConflict)
	}
}
