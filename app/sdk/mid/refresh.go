package mid

import (
	"context"
	"net/http"

	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// Refresher starts a synchronization pass in the background.
type Refresher interface {
	Trigger(ctx context.Context)
}

// Refresh starts a synchronization pass after the handler succeeded. List it
// before BeginCommitRollback so the pass starts once the data is committed.
func Refresh(rfr Refresher) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			if statusOf(resp) < http.StatusBadRequest {
				rfr.Trigger(ctx)
			}

			return resp
		}

		return h
	}

	return m
}
