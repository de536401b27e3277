// Package sessionapp maintains the app layer api for the process session.
package sessionapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

type app struct {
	log     *logger.Logger
	auth    *auth.Auth
	kid     string
	userBus *userbus.Core
	session *sessionbus.Core
}

func newApp(cfg Config) *app {
	return &app{
		log:     cfg.Log,
		auth:    cfg.Auth,
		kid:     cfg.ActiveKID,
		userBus: cfg.UserBus,
		session: cfg.Session,
	}
}

func (a *app) login(ctx context.Context, r *http.Request) web.Encoder {
	var req Login
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("parsing email: %w", err))
	}

	usr, err := a.userBus.Login(ctx, *addr, req.Password)
	if err != nil {
		if errors.Is(err, userbus.ErrAuthenticationFailure) {
			return errs.New(errs.Unauthenticated, userbus.ErrAuthenticationFailure)
		}
		return errs.Errorf(errs.InternalOnlyLog, "login: email[%s]: %s", addr.Address, err)
	}

	return a.open(ctx, usr)
}

func (a *app) register(ctx context.Context, r *http.Request) web.Encoder {
	var req Register
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nu, err := toBusNewUser(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.userBus.Register(ctx, nu)
	if err != nil {
		if errors.Is(err, userbus.ErrUniqueEmail) {
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "register: email[%s]: %s", nu.Email.Address, err)
	}

	return a.open(ctx, usr)
}

// open binds the process session to the user and issues their token.
func (a *app) open(ctx context.Context, usr userbus.User) web.Encoder {
	token, err := a.auth.GenerateToken(a.kid, usr)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "generatetoken: userID[%s]: %s", usr.ID, err)
	}

	if err := a.session.Set(ctx, usr); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "session: userID[%s]: %s", usr.ID, err)
	}

	a.log.Info(ctx, "session opened", "userID", usr.ID, "ownerID", usr.OwnerID, "role", usr.Role)

	return toAppSession(usr, true, token)
}

func (a *app) query(ctx context.Context, _ *http.Request) web.Encoder {
	usr, ok := a.session.Current(ctx)
	return toAppSession(usr, ok, "")
}

func (a *app) logout(ctx context.Context, _ *http.Request) web.Encoder {
	if err := a.session.Clear(ctx); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "clear session: %s", err)
	}

	return nil
}
