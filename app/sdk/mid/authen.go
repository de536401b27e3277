package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// SessionReader returns the process session.
type SessionReader interface {
	Current(ctx context.Context) (userbus.User, bool)
}

// Authenticate validates the bearer token and puts its claims in the
// context.
func Authenticate(a *auth.Auth) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			authStr := r.Header.Get("authorization")
			if authStr == "" {
				return errs.New(errs.Unauthenticated, errors.New("missing authorization header"))
			}

			claims, err := a.Authenticate(ctx, authStr)
			if err != nil {
				return errs.New(errs.Unauthenticated, err)
			}

			return next(setClaims(ctx, claims), r)
		}

		return h
	}

	return m
}

// Session binds the request to the process session. The token must have
// been issued to the session user; a token left over from a previous
// session is refused.
func Session(sess SessionReader) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			usr, ok := sess.Current(ctx)
			if !ok {
				return errs.New(errs.Unauthenticated, errors.New("no active session"))
			}

			if usr.ID != GetSubjectID(ctx) {
				return errs.New(errs.Unauthenticated, errors.New("token does not belong to the active session"))
			}

			return next(setUser(ctx, usr), r)
		}

		return h
	}

	return m
}
