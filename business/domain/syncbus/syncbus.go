// Package syncbus keeps a published snapshot of the session tenant's data,
// refreshed by fetching every collection concurrently and swapping the
// result in only when all of them succeed.
package syncbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
	"golang.org/x/sync/errgroup"
)

// Set of error variables for synchronization.
var (
	ErrNoSession = errors.New("no session to synchronize")
	ErrInFlight  = errors.New("synchronization already in flight")
	ErrStale     = errors.New("session changed during synchronization")
)

// DefaultFetchTimeout bounds each individual fetch of a pass.
const DefaultFetchTimeout = 15 * time.Second

// Set of pass outcomes reported to the observer.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// SessionStore is the session the orchestrator synchronizes for. Refresh
// replaces the profile only while the same user still holds the session and
// reports whether it did.
type SessionStore interface {
	Current(ctx context.Context) (userbus.User, bool)
	Refresh(ctx context.Context, usr userbus.User) (bool, error)
}

// Observer is told how each pass ended.
type Observer interface {
	PassFinished(outcome string, took time.Duration)
}

// Config holds the optional settings of an Orchestrator.
type Config struct {
	FetchTimeout time.Duration
	Observer     Observer
}

// Orchestrator runs synchronization passes. At most one pass runs at a time
// per orchestrator.
type Orchestrator struct {
	log          *logger.Logger
	session      SessionStore
	gateway      Gateway
	fetchTimeout time.Duration
	observer     Observer

	running atomic.Bool
	snap    atomic.Pointer[Snapshot]

	mu  sync.Mutex
	gen uint64

	wg sync.WaitGroup
}

// New constructs an orchestrator for use.
func New(log *logger.Logger, session SessionStore, gateway Gateway, cfg Config) *Orchestrator {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	return &Orchestrator{
		log:          log,
		session:      session,
		gateway:      gateway,
		fetchTimeout: cfg.FetchTimeout,
		observer:     cfg.Observer,
	}
}

// Snapshot returns the published snapshot, nil before the first successful
// pass and after a discard.
func (o *Orchestrator) Snapshot() *Snapshot {
	return o.snap.Load()
}

// Discard drops the published snapshot. A pass in flight will not publish.
func (o *Orchestrator) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gen++
	o.snap.Store(nil)
}

// OnSession follows the session store: a new identity discards the old
// tenant's snapshot and starts a pass, a cleared session only discards.
func (o *Orchestrator) OnSession(ctx context.Context, usr userbus.User, ok bool) {
	o.Discard()

	if ok {
		o.Trigger(ctx)
	}
}

// Trigger starts a pass in the background. It is dropped when a pass is
// already in flight.
func (o *Orchestrator) Trigger(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	o.wg.Go(func() {
		o.Synchronize(ctx)
	})
}

// Wait blocks until background passes have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Synchronize runs one pass for the current session. It returns ErrNoSession
// without a session and ErrInFlight, without waiting, while another pass
// runs. When any fetch fails the previous snapshot stays published.
func (o *Orchestrator) Synchronize(ctx context.Context) error {
	usr, ok := o.session.Current(ctx)
	if !ok {
		o.observe(OutcomeSkipped, 0)
		return ErrNoSession
	}

	if !o.running.CompareAndSwap(false, true) {
		o.observe(OutcomeSkipped, 0)
		return ErrInFlight
	}
	defer o.running.Store(false)

	ctx, span := otel.AddSpan(ctx, "business.syncbus.synchronize")
	defer span.End()

	o.mu.Lock()
	gen := o.gen
	o.mu.Unlock()

	start := time.Now()

	snap, err := o.fetch(ctx, usr)
	if err != nil {
		o.observe(OutcomeFailed, time.Since(start))
		o.log.Error(ctx, "sync: pass failed", "ownerID", usr.OwnerID, "userID", usr.ID, "ERROR", err)
		return fmt.Errorf("synchronize: ownerID[%s]: %w", usr.OwnerID, err)
	}

	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		o.observe(OutcomeSkipped, time.Since(start))
		o.log.Info(ctx, "sync: stale pass dropped", "ownerID", usr.OwnerID, "userID", usr.ID)
		return ErrStale
	}
	o.snap.Store(snap)
	o.mu.Unlock()

	took := time.Since(start)
	o.observe(OutcomeOK, took)
	o.log.Info(ctx, "sync: published", "ownerID", usr.OwnerID, "userID", usr.ID, "took", took,
		"clients", len(snap.Clients), "tasks", len(snap.Tasks), "transactions", len(snap.Transactions),
		"events", len(snap.Events), "messages", len(snap.Messages))

	if sameProfile(usr, snap.Profile) {
		return nil
	}

	// A logout after the publish above bumps the generation and clears the
	// session; neither may be undone by the profile write.
	o.mu.Lock()
	current := o.gen == gen
	o.mu.Unlock()

	if !current {
		return ErrStale
	}

	refreshed, err := o.session.Refresh(ctx, snap.Profile)
	if err != nil {
		o.log.Error(ctx, "sync: refresh session profile", "userID", usr.ID, "ERROR", err)
		return fmt.Errorf("session: userID[%s]: %w", usr.ID, err)
	}

	if !refreshed {
		o.log.Info(ctx, "sync: session left before the profile refresh", "userID", usr.ID)
		return ErrStale
	}

	return nil
}

func (o *Orchestrator) observe(outcome string, took time.Duration) {
	if o.observer != nil {
		o.observer.PassFinished(outcome, took)
	}
}

// =============================================================================

func (o *Orchestrator) fetch(ctx context.Context, usr userbus.User) (*Snapshot, error) {
	ownerID := usr.OwnerID
	if ownerID == uuid.Nil {
		ownerID = usr.ID
	}

	s := Snapshot{
		OwnerID: ownerID,
		UserID:  usr.ID,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Each fetch writes its own field of s, so no locking is needed.
	run := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
			defer cancel()

			if err := fn(ctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	run("profile", func(ctx context.Context) (err error) {
		s.Profile, err = o.gateway.Profile(ctx, usr.ID)
		return err
	})
	run("clients", func(ctx context.Context) (err error) {
		s.Clients, err = o.gateway.Clients(ctx, ownerID)
		return err
	})
	run("tasks", func(ctx context.Context) (err error) {
		s.Tasks, err = o.gateway.Tasks(ctx, ownerID)
		return err
	})
	run("transactions", func(ctx context.Context) (err error) {
		s.Transactions, err = o.gateway.Transactions(ctx, ownerID)
		return err
	})
	run("events", func(ctx context.Context) (err error) {
		s.Events, err = o.gateway.Events(ctx, ownerID, usr.ID)
		return err
	})
	run("messages", func(ctx context.Context) (err error) {
		s.Messages, err = o.gateway.Messages(ctx, ownerID)
		return err
	})
	run("groups", func(ctx context.Context) (err error) {
		s.Groups, err = o.gateway.Groups(ctx, ownerID)
		return err
	})
	run("ads", func(ctx context.Context) (err error) {
		s.Ads, err = o.gateway.AdsMetrics(ctx, ownerID)
		return err
	})
	run("suppliers", func(ctx context.Context) (err error) {
		s.Suppliers, err = o.gateway.Suppliers(ctx, ownerID)
		return err
	})
	run("team", func(ctx context.Context) (err error) {
		s.Team, err = o.gateway.Team(ctx, ownerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.scope(ctx, &s)
	s.SyncedAt = time.Now().UTC()

	return &s, nil
}
