package mid

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

// BeginCommitRollback runs the handler inside a database transaction. The
// transaction commits when the handler returns a non error response and
// rolls back otherwise.
func BeginCommitRollback(log *logger.Logger, bgn sqldb.Beginner) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			tx, err := bgn.Begin()
			if err != nil {
				return errs.Errorf(errs.Internal, "BEGIN TRANSACTION: %s", err)
			}

			committed := false

			defer func() {
				if committed {
					return
				}

				log.Info(ctx, "ROLLBACK TRANSACTION", "path", r.URL.Path)

				if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
					log.Error(ctx, "ROLLBACK TRANSACTION", "ERROR", err)
				}
			}()

			resp := next(setTran(ctx, tx), r)
			if checkIsError(resp) != nil {
				return resp
			}

			if err := tx.Commit(); err != nil {
				return errs.Errorf(errs.Internal, "COMMIT TRANSACTION: %s", err)
			}

			committed = true

			return resp
		}

		return h
	}

	return m
}
