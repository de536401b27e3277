// Package userapp maintains the app layer api for the tenant's members.
package userapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/domain/sessionapp"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// app manages the set of app layer api functions for the user domain.
type app struct {
	userBus *userbus.Core
	session *sessionbus.Core
}

func newApp(userBus *userbus.Core, session *sessionbus.Core) *app {
	return &app{
		userBus: userBus,
		session: session,
	}
}

// create adds a member to the caller's tenant.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewUser
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	nm, err := toBusNewMember(usr.OwnerID, req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	mbr, err := a.userBus.Invite(ctx, nm)
	if err != nil {
		switch {
		case errors.Is(err, userbus.ErrUniqueEmail):
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		case errors.Is(err, userbus.ErrOwnerNotFound), errors.Is(err, userbus.ErrNotOwner):
			return errs.New(errs.FailedPrecondition, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "invite: email[%s]: %s", nm.Email.Address, err)
	}

	return toAppUser(mbr)
}

// query returns the members of the caller's tenant.
func (a *app) query(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	team, err := a.userBus.QueryByOwner(ctx, usr.OwnerID)
	if err != nil {
		return errs.Errorf(errs.Internal, "querybyowner: ownerID[%s]: %s", usr.OwnerID, err)
	}

	return Team(sessionapp.ToAppUsers(team))
}

// delete removes a member of the caller's tenant. The tenant owner and the
// caller themselves can't be removed this way.
func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	userID, err := uuid.Parse(web.Param(r, "user_id"))
	if err != nil {
		return errs.NewFieldErrors("user_id", err)
	}

	mbr, err := a.userBus.QueryByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return errs.New(errs.NotFound, userbus.ErrNotFound)
		}
		return errs.Errorf(errs.InternalOnlyLog, "querybyid: userID[%s]: %s", userID, err)
	}

	if mbr.OwnerID != usr.OwnerID {
		return errs.New(errs.NotFound, userbus.ErrNotFound)
	}

	if mbr.ID == usr.ID || mbr.IsOwner() {
		return errs.Errorf(errs.FailedPrecondition, "user %s can't be removed", mbr.ID)
	}

	if err := a.userBus.Delete(ctx, mbr); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: userID[%s]: %s", mbr.ID, err)
	}

	return nil
}

// queryMe returns the caller's profile.
func (a *app) queryMe(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	return toAppUser(usr)
}

// updateMe updates the caller's profile and the session holding it.
func (a *app) updateMe(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateUser
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	uu, err := toBusUpdateUser(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	upd, err := a.userBus.Update(ctx, usr, uu)
	if err != nil {
		switch {
		case errors.Is(err, userbus.ErrConflict):
			return errs.New(errs.Aborted, userbus.ErrConflict)
		case errors.Is(err, userbus.ErrUniqueEmail):
			return errs.New(errs.Aborted, userbus.ErrUniqueEmail)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: userID[%s]: %s", usr.ID, err)
	}

	if err := a.session.Set(ctx, upd); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "session: userID[%s]: %s", upd.ID, err)
	}

	return toAppUser(upd)
}
