package mid

import (
	"context"
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
)

// Authorize checks the caller holds one of the roles. The session user's
// role is used when the request is bound to a session, since it reflects
// changes made after the token was issued.
func Authorize(a *auth.Auth, allowed ...role.Role) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			var rle role.Role

			if usr, err := GetUser(ctx); err == nil {
				rle = usr.Role
			} else {
				v, err := role.Parse(GetClaims(ctx).Role)
				if err != nil {
					return errs.New(errs.Unauthenticated, err)
				}
				rle = v
			}

			if err := a.Authorize(ctx, rle, allowed...); err != nil {
				return errs.New(errs.PermissionDenied, err)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
