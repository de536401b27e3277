package sessionbus_test

import (
	"context"
	"errors"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

type slot struct {
	mu     sync.Mutex
	data   map[string][]byte
	SetErr error
}

func newSlot() *slot {
	return &slot{data: make(map[string][]byte)}
}

func (s *slot) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return nil, sessionbus.ErrNotFound
	}
	return v, nil
}

func (s *slot) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}
	s.data[key] = value
	return nil
}

func (s *slot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

type call struct {
	id uuid.UUID
	ok bool
}

func record(core *sessionbus.Core) *[]call {
	var calls []call
	core.AddListener(func(ctx context.Context, usr userbus.User, ok bool) {
		calls = append(calls, call{id: usr.ID, ok: ok})
	})
	return &calls
}

func testUser() userbus.User {
	id := uuid.New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	return userbus.User{
		ID:                      id,
		OwnerID:                 id,
		Name:                    name.MustParse("Ana Souza"),
		Email:                   mail.Address{Address: "ana@example.com"},
		Role:                    role.Admin,
		Status:                  status.Active,
		Plan:                    plan.Pro,
		StripeCustomerID:        "cus_1",
		GoogleCalendarConnected: true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func Test_Key(t *testing.T) {
	if k := sessionbus.Key(""); k != "JHGESTOR_SESSION" {
		t.Errorf("default: got %q", k)
	}
	if k := sessionbus.Key("crm"); k != "CRM_SESSION" {
		t.Errorf("named: got %q", k)
	}
}

func Test_SetCurrentClear(t *testing.T) {
	s := newSlot()
	core := sessionbus.NewCore(logger.Discard(), s, "")
	calls := record(core)
	ctx := context.Background()

	if _, ok := core.Current(ctx); ok {
		t.Fatal("Should start without a session")
	}

	usr := testUser()
	if err := core.Set(ctx, usr); err != nil {
		t.Fatalf("Should be able to set: %s", err)
	}

	got, ok := core.Current(ctx)
	if !ok {
		t.Fatal("Should have a session")
	}
	if diff := cmp.Diff(usr, got); diff != "" {
		t.Errorf("Should get the user back:\n%s", diff)
	}

	// Same identity: no notification.
	usr.Status = status.PastDue
	if err := core.Set(ctx, usr); err != nil {
		t.Fatalf("Should be able to set: %s", err)
	}

	if err := core.Clear(ctx); err != nil {
		t.Fatalf("Should be able to clear: %s", err)
	}
	if _, ok := core.Current(ctx); ok {
		t.Error("Should not have a session after clear")
	}
	if _, err := s.Get(ctx, "JHGESTOR_SESSION"); !errors.Is(err, sessionbus.ErrNotFound) {
		t.Errorf("Should remove the persisted record, got %v", err)
	}

	exp := []call{{id: usr.ID, ok: true}, {id: uuid.Nil, ok: false}}
	if diff := cmp.Diff(exp, *calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("listener calls:\n%s", diff)
	}
}

func Test_Rehydrate(t *testing.T) {
	s := newSlot()
	ctx := context.Background()
	usr := testUser()

	first := sessionbus.NewCore(logger.Discard(), s, "")
	if err := first.Set(ctx, usr); err != nil {
		t.Fatalf("Should be able to set: %s", err)
	}

	second := sessionbus.NewCore(logger.Discard(), s, "")
	calls := record(second)
	second.Load(ctx)

	got, ok := second.Current(ctx)
	if !ok {
		t.Fatal("Should rehydrate the session")
	}
	if diff := cmp.Diff(usr, got); diff != "" {
		t.Errorf("Should get the same user:\n%s", diff)
	}
	if len(*calls) != 1 || !(*calls)[0].ok {
		t.Errorf("Should notify on load, got %v", *calls)
	}
}

func Test_Normalize(t *testing.T) {
	s := newSlot()
	ctx := context.Background()

	s.data["JHGESTOR_SESSION"] = []byte(`{
		"id":"5cf37266-3473-4006-984f-9325122678b7",
		"owner_id":"45b5fbd3-755f-4379-8f07-a58d4a30fa2f",
		"name":"Ana","email":"ana@example.com","role":"USER",
		"status":"BLOCKED","plan":"FREE",
		"google_calendar_connected":true}`)

	core := sessionbus.NewCore(logger.Discard(), s, "")
	usr, ok := core.Current(ctx)
	if !ok {
		t.Fatal("Should read the legacy record")
	}

	if usr.OwnerID != uuid.MustParse("45b5fbd3-755f-4379-8f07-a58d4a30fa2f") {
		t.Errorf("owner: got %s", usr.OwnerID)
	}
	if !usr.GoogleCalendarConnected {
		t.Error("Should fold google_calendar_connected")
	}
	if core.State(ctx) != sessionbus.AuthenticatedBlocked {
		t.Errorf("state: got %s", core.State(ctx))
	}

	t.Run("missing-owner", func(t *testing.T) {
		s.data["JHGESTOR_SESSION"] = []byte(`{"id":"5cf37266-3473-4006-984f-9325122678b7","name":"Ana","email":"ana@example.com"}`)

		core := sessionbus.NewCore(logger.Discard(), s, "")
		usr, ok := core.Current(ctx)
		if !ok {
			t.Fatal("Should read the record")
		}
		if usr.OwnerID != usr.ID {
			t.Errorf("Should fall back to the user id, got %s", usr.OwnerID)
		}
	})
}

func Test_Corrupt(t *testing.T) {
	s := newSlot()
	ctx := context.Background()

	for _, data := range []string{`{not json`, `{"id":"nope","email":"a@b.c"}`, `{"id":"5cf37266-3473-4006-984f-9325122678b7","email":"x"}`} {
		s.data["JHGESTOR_SESSION"] = []byte(data)

		core := sessionbus.NewCore(logger.Discard(), s, "")
		if _, ok := core.Current(ctx); ok {
			t.Errorf("Should treat %q as absent", data)
		}
	}
}

func Test_Refresh(t *testing.T) {
	s := newSlot()
	core := sessionbus.NewCore(logger.Discard(), s, "")
	calls := record(core)
	ctx := context.Background()

	usr := testUser()

	if ok, err := core.Refresh(ctx, usr); err != nil || ok {
		t.Fatalf("Should not create a session, got ok %t err %v", ok, err)
	}
	if _, ok := core.Current(ctx); ok {
		t.Fatal("Should still be without a session")
	}

	if err := core.Set(ctx, usr); err != nil {
		t.Fatalf("Should be able to set: %s", err)
	}

	blocked := usr
	blocked.Status = status.Blocked
	ok, err := core.Refresh(ctx, blocked)
	if err != nil || !ok {
		t.Fatalf("Should refresh the session user, got ok %t err %v", ok, err)
	}
	if got, _ := core.Current(ctx); got.Status != status.Blocked {
		t.Errorf("got status %s, want %s", got.Status, status.Blocked)
	}

	if ok, _ := core.Refresh(ctx, testUser()); ok {
		t.Error("Should not refresh over another user")
	}

	if err := core.Clear(ctx); err != nil {
		t.Fatalf("Should be able to clear: %s", err)
	}
	if ok, _ := core.Refresh(ctx, blocked); ok {
		t.Error("Should not bring a logged out user back")
	}
	if _, err := s.Get(ctx, "JHGESTOR_SESSION"); !errors.Is(err, sessionbus.ErrNotFound) {
		t.Errorf("Should leave the slot empty, got %v", err)
	}

	exp := []call{{id: usr.ID, ok: true}, {id: uuid.Nil, ok: false}}
	if diff := cmp.Diff(exp, *calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("listener calls:\n%s", diff)
	}
}

func Test_PersistFailure(t *testing.T) {
	s := newSlot()
	core := sessionbus.NewCore(logger.Discard(), s, "")
	calls := record(core)
	ctx := context.Background()

	s.SetErr = errors.New("disk full")

	if err := core.Set(ctx, testUser()); err == nil {
		t.Fatal("Should return the persist error")
	}
	if _, ok := core.Current(ctx); ok {
		t.Error("Should leave the session unchanged")
	}
	if len(*calls) != 0 {
		t.Errorf("Should not notify, got %v", *calls)
	}
}

func Test_StateOf(t *testing.T) {
	usr := testUser()

	table := []struct {
		name   string
		status status.Status
		ok     bool
		exp    sessionbus.State
	}{
		{"absent", status.Active, false, sessionbus.Unauthenticated},
		{"active", status.Active, true, sessionbus.AuthenticatedActive},
		{"past-due", status.PastDue, true, sessionbus.AuthenticatedActive},
		{"blocked", status.Blocked, true, sessionbus.AuthenticatedBlocked},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			usr.Status = tt.status
			if got := sessionbus.StateOf(usr, tt.ok); got != tt.exp {
				t.Errorf("got %s, exp %s", got, tt.exp)
			}
		})
	}

	if sessionbus.AuthenticatedBlocked.Allowed("clients") {
		t.Error("Blocked should not reach clients")
	}
	if !sessionbus.AuthenticatedBlocked.Allowed(sessionbus.GroupBilling) || !sessionbus.AuthenticatedBlocked.Allowed(sessionbus.GroupLogout) {
		t.Error("Blocked should reach billing and logout")
	}
	if !sessionbus.AuthenticatedBlocked.Allowed(sessionbus.GroupRefresh) {
		t.Error("Blocked should be able to refresh")
	}
	if sessionbus.Unauthenticated.Allowed(sessionbus.GroupBilling) {
		t.Error("Unauthenticated should reach nothing gated")
	}
}
