package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/jcpaschoal/jhgestor/app/sdk/metrics"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// Metrics updates program counters.
func Metrics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			resp := next(ctx, r)

			metrics.AddRequests(ctx, r.Method, time.Since(now))

			if checkIsError(resp) != nil {
				metrics.AddErrors(ctx)
			}

			return resp
		}

		return h
	}

	return m
}
