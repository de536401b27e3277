// Package syncapp maintains the app layer api for synchronization passes and
// the snapshot they publish.
package syncapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	sync *syncbus.Orchestrator
}

func newApp(sync *syncbus.Orchestrator) *app {
	return &app{
		sync: sync,
	}
}

func (a *app) synchronize(ctx context.Context, _ *http.Request) web.Encoder {
	err := a.sync.Synchronize(ctx)

	switch {
	case err == nil:

	case errors.Is(err, syncbus.ErrNoSession):
		return errs.New(errs.Unauthenticated, err)

	case errors.Is(err, syncbus.ErrInFlight):
		return Status{Result: ResultInFlight}

	case errors.Is(err, syncbus.ErrStale):
		return Status{Result: ResultStale}

	default:
		return errs.Errorf(errs.Unavailable, "synchronize: %s", err)
	}

	st := Status{Result: ResultSynced}
	if snap := a.sync.Snapshot(); snap != nil {
		st.SyncedAt = snap.SyncedAt.Format(time.RFC3339Nano)
	}

	return st
}

func (a *app) snapshot(ctx context.Context, _ *http.Request) web.Encoder {
	snap, resp := Current(ctx, a.sync)
	if resp != nil {
		return resp
	}

	return toAppSnapshot(snap)
}

// Current returns the published snapshot when it belongs to the session
// user. Without one it starts a pass and reports NotFound.
func Current(ctx context.Context, sync *syncbus.Orchestrator) (*syncbus.Snapshot, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return nil, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	snap := sync.Snapshot()
	if snap == nil || snap.UserID != usr.ID {
		sync.Trigger(ctx)
		return nil, errs.Errorf(errs.NotFound, "nothing synchronized yet")
	}

	return snap, nil
}
