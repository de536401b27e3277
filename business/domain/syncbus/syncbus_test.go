package syncbus_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

type session struct {
	mu   sync.Mutex
	usr  *userbus.User
	sets int
}

func (s *session) Current(ctx context.Context) (userbus.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usr == nil {
		return userbus.User{}, false
	}
	return *s.usr, true
}

func (s *session) Refresh(ctx context.Context, usr userbus.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usr == nil || s.usr.ID != usr.ID {
		return false, nil
	}
	s.usr = &usr
	s.sets++
	return true, nil
}

func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usr = nil
}

type gateway struct {
	profile userbus.User
	owner   uuid.UUID
	foreign uuid.UUID

	clients    []clientbus.Client
	ClientsErr error
	TasksErr   error
	block      chan struct{}
	started    chan struct{}
	waitCtx    bool
	fanouts    atomic.Int32
}

func (g *gateway) Profile(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	g.fanouts.Add(1)
	return g.profile, nil
}

func (g *gateway) Team(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	return []userbus.User{g.profile}, nil
}

func (g *gateway) Clients(ctx context.Context, ownerID uuid.UUID) ([]clientbus.Client, error) {
	if g.started != nil {
		close(g.started)
	}
	if g.block != nil {
		<-g.block
	}
	if g.waitCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.ClientsErr != nil {
		return nil, g.ClientsErr
	}
	if g.clients != nil {
		return g.clients, nil
	}

	return []clientbus.Client{
		{ID: uuid.New(), OwnerID: g.owner},
		{ID: uuid.New(), OwnerID: g.foreign},
		{ID: uuid.New(), OwnerID: g.owner},
	}, nil
}

func (g *gateway) Tasks(ctx context.Context, ownerID uuid.UUID) ([]taskbus.Task, error) {
	if g.TasksErr != nil {
		return nil, g.TasksErr
	}
	return []taskbus.Task{{ID: uuid.New(), OwnerID: ownerID}}, nil
}

func (g *gateway) Transactions(ctx context.Context, ownerID uuid.UUID) ([]transactionbus.Transaction, error) {
	return []transactionbus.Transaction{{ID: uuid.New(), OwnerID: ownerID}}, nil
}

func (g *gateway) Events(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]eventbus.Event, error) {
	return []eventbus.Event{{ID: uuid.New(), OwnerID: ownerID, UserID: userID}}, nil
}

func (g *gateway) Messages(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Message, error) {
	return []chatbus.Message{{ID: uuid.New(), OwnerID: g.foreign}}, nil
}

func (g *gateway) Groups(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Group, error) {
	return nil, nil
}

func (g *gateway) AdsMetrics(ctx context.Context, ownerID uuid.UUID) (adsbus.Metrics, error) {
	return adsbus.Metrics{OwnerID: ownerID, Leads: 4, Period: "last_30d"}, nil
}

func (g *gateway) Suppliers(ctx context.Context, ownerID uuid.UUID) ([]supplierbus.Supplier, error) {
	return []supplierbus.Supplier{{ID: uuid.New(), OwnerID: ownerID}}, nil
}

type observer struct {
	mu       sync.Mutex
	outcomes []string
	onOK     func()
}

func (o *observer) PassFinished(outcome string, took time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()

	if outcome == syncbus.OutcomeOK && o.onOK != nil {
		o.onOK()
	}
}

func setup() (*session, *gateway, userbus.User) {
	id := uuid.New()
	usr := userbus.User{
		ID:        id,
		OwnerID:   id,
		Status:    status.Active,
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	s := session{usr: &usr}
	g := gateway{profile: usr, owner: id, foreign: uuid.New()}

	return &s, &g, usr
}

func Test_NoSession(t *testing.T) {
	_, g, _ := setup()
	obs := observer{}
	o := syncbus.New(logger.Discard(), &session{}, g, syncbus.Config{Observer: &obs})

	if err := o.Synchronize(context.Background()); !errors.Is(err, syncbus.ErrNoSession) {
		t.Fatalf("Should report no session, got %v", err)
	}
	if o.Snapshot() != nil {
		t.Error("Should not publish")
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != syncbus.OutcomeSkipped {
		t.Errorf("outcomes: got %v", obs.outcomes)
	}
}

func Test_Publish(t *testing.T) {
	s, g, usr := setup()
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})

	if err := o.Synchronize(context.Background()); err != nil {
		t.Fatalf("Should synchronize: %s", err)
	}

	snap := o.Snapshot()
	if snap == nil {
		t.Fatal("Should publish a snapshot")
	}

	if snap.OwnerID != usr.OwnerID || snap.UserID != usr.ID {
		t.Errorf("scope: got owner %s user %s", snap.OwnerID, snap.UserID)
	}
	if len(snap.Clients) != 2 {
		t.Errorf("Should drop the foreign client, got %d clients", len(snap.Clients))
	}
	if len(snap.Messages) != 0 {
		t.Errorf("Should drop the foreign message, got %d", len(snap.Messages))
	}
	if len(snap.Tasks) != 1 || len(snap.Transactions) != 1 || len(snap.Events) != 1 || len(snap.Suppliers) != 1 || len(snap.Team) != 1 {
		t.Errorf("Should keep owned records: %+v", snap)
	}
	if snap.Ads.Leads != 4 {
		t.Errorf("ads: got %+v", snap.Ads)
	}
	if snap.SyncedAt.IsZero() {
		t.Error("Should stamp the pass")
	}
	if s.sets != 0 {
		t.Errorf("Should not touch an unchanged session, got %d sets", s.sets)
	}
}

func Test_FailureKeepsSnapshot(t *testing.T) {
	s, g, _ := setup()
	obs := observer{}
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{Observer: &obs})
	ctx := context.Background()

	if err := o.Synchronize(ctx); err != nil {
		t.Fatalf("Should synchronize: %s", err)
	}
	prev := o.Snapshot()

	g.ClientsErr = errors.New("connection reset")

	if err := o.Synchronize(ctx); err == nil {
		t.Fatal("Should return the fetch failure")
	}
	if o.Snapshot() != prev {
		t.Error("Should keep the previous snapshot")
	}

	exp := []string{syncbus.OutcomeOK, syncbus.OutcomeFailed}
	if len(obs.outcomes) != 2 || obs.outcomes[0] != exp[0] || obs.outcomes[1] != exp[1] {
		t.Errorf("outcomes: got %v", obs.outcomes)
	}
}

func Test_InFlight(t *testing.T) {
	s, g, _ := setup()
	g.block = make(chan struct{})
	g.started = make(chan struct{})
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- o.Synchronize(ctx)
	}()

	<-g.started

	if err := o.Synchronize(ctx); !errors.Is(err, syncbus.ErrInFlight) {
		t.Fatalf("Should refuse a second pass, got %v", err)
	}

	close(g.block)

	if err := <-done; err != nil {
		t.Fatalf("First pass should succeed: %s", err)
	}
	if o.Snapshot() == nil {
		t.Error("Should publish the first pass")
	}
}

func Test_FetchTimeout(t *testing.T) {
	s, g, _ := setup()
	g.waitCtx = true
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{FetchTimeout: 20 * time.Millisecond})

	err := o.Synchronize(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Should time the fetch out, got %v", err)
	}
	if o.Snapshot() != nil {
		t.Error("Should not publish")
	}

	if syncbus.DefaultFetchTimeout != 15*time.Second {
		t.Errorf("default fetch timeout: got %s, want 15s", syncbus.DefaultFetchTimeout)
	}
}

func Test_ProfileRefresh(t *testing.T) {
	s, g, usr := setup()
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})

	blocked := usr
	blocked.Status = status.Blocked
	blocked.UpdatedAt = usr.UpdatedAt.Add(time.Minute)
	g.profile = blocked

	if err := o.Synchronize(context.Background()); err != nil {
		t.Fatalf("Should synchronize: %s", err)
	}

	got, _ := s.Current(context.Background())
	if got.Status != status.Blocked || s.sets != 1 {
		t.Errorf("Should refresh the session profile, got status %s after %d sets", got.Status, s.sets)
	}
}

func Test_DiscardDuringPass(t *testing.T) {
	s, g, _ := setup()
	g.block = make(chan struct{})
	g.started = make(chan struct{})
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})

	done := make(chan error, 1)
	go func() {
		done <- o.Synchronize(context.Background())
	}()

	<-g.started
	o.Discard()
	close(g.block)

	if err := <-done; !errors.Is(err, syncbus.ErrStale) {
		t.Fatalf("Should drop the stale pass, got %v", err)
	}
	if o.Snapshot() != nil {
		t.Error("Should not publish after a discard")
	}
}

func Test_OnSession(t *testing.T) {
	s, g, usr := setup()
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})
	ctx := context.Background()

	o.OnSession(ctx, usr, true)
	o.Wait()

	if o.Snapshot() == nil {
		t.Fatal("Should synchronize on a new session")
	}

	o.OnSession(ctx, userbus.User{}, false)
	o.Wait()

	if o.Snapshot() != nil {
		t.Error("Should discard on logout")
	}
}

func Test_OwnerScope(t *testing.T) {
	s, g, usr := setup()
	other := uuid.New()

	a, b, c := uuid.New(), uuid.New(), uuid.New()

	g.clients = []clientbus.Client{
		{ID: a, OwnerID: usr.OwnerID},
		{ID: uuid.New(), OwnerID: other},
		{ID: b, OwnerID: usr.OwnerID},
		{ID: uuid.New(), OwnerID: other},
		{ID: c, OwnerID: usr.OwnerID},
	}

	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})

	if err := o.Synchronize(context.Background()); err != nil {
		t.Fatalf("Should synchronize: %s", err)
	}

	if diff := cmp.Diff([]uuid.UUID{a, b, c}, clientIDs(o.Snapshot().Clients)); diff != "" {
		t.Errorf("Should publish only the session tenant's clients, in order:\n%s", diff)
	}
}

func Test_TasksFailureKeepsSnapshot(t *testing.T) {
	s, g, _ := setup()
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{})
	ctx := context.Background()

	if err := o.Synchronize(ctx); err != nil {
		t.Fatalf("Should synchronize: %s", err)
	}
	prev := o.Snapshot()
	prevClients := clientIDs(prev.Clients)

	g.TasksErr = errors.New("network unreachable")
	g.clients = []clientbus.Client{{ID: uuid.New(), OwnerID: g.owner}}

	err := o.Synchronize(ctx)
	if !errors.Is(err, g.TasksErr) {
		t.Fatalf("Should return the tasks failure, got %v", err)
	}

	got := o.Snapshot()
	if got != prev {
		t.Fatal("Should keep the previous snapshot")
	}
	if diff := cmp.Diff(prevClients, clientIDs(got.Clients)); diff != "" {
		t.Errorf("Should not publish the clients fetched alongside the failure:\n%s", diff)
	}
}

func Test_TriggerWhileInFlight(t *testing.T) {
	s, g, _ := setup()
	g.block = make(chan struct{})
	g.started = make(chan struct{})
	obs := observer{}
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{Observer: &obs})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- o.Synchronize(ctx)
	}()

	<-g.started

	o.Trigger(ctx)
	o.Trigger(ctx)
	o.Wait()

	close(g.block)

	if err := <-done; err != nil {
		t.Fatalf("First pass should succeed: %s", err)
	}
	o.Wait()

	if n := g.fanouts.Load(); n != 1 {
		t.Errorf("Should fan out exactly once, got %d", n)
	}

	exp := []string{syncbus.OutcomeSkipped, syncbus.OutcomeSkipped, syncbus.OutcomeOK}
	if diff := cmp.Diff(exp, obs.outcomes); diff != "" {
		t.Errorf("outcomes:\n%s", diff)
	}
}

func Test_LogoutBeforeProfileRefresh(t *testing.T) {
	s, g, usr := setup()

	blocked := usr
	blocked.Status = status.Blocked
	blocked.UpdatedAt = usr.UpdatedAt.Add(time.Minute)
	g.profile = blocked

	obs := observer{}
	o := syncbus.New(logger.Discard(), s, g, syncbus.Config{Observer: &obs})

	// The user logs out right after the snapshot was published.
	obs.onOK = func() {
		s.clear()
		o.Discard()
	}

	if err := o.Synchronize(context.Background()); !errors.Is(err, syncbus.ErrStale) {
		t.Fatalf("Should give up the profile refresh, got %v", err)
	}

	if _, ok := s.Current(context.Background()); ok {
		t.Error("Should stay logged out")
	}
	if s.sets != 0 {
		t.Errorf("Should not write the session, got %d writes", s.sets)
	}
	if o.Snapshot() != nil {
		t.Error("Should stay discarded")
	}
}

func clientIDs(clns []clientbus.Client) []uuid.UUID {
	ids := make([]uuid.UUID, len(clns))
	for i, cln := range clns {
		ids[i] = cln.ID
	}
	return ids
}
