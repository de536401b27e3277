// Package eventapp maintains the app layer api for the calendar.
package eventapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	userBus  *userbus.Core
	eventBus *eventbus.Core
}

func newApp(userBus *userbus.Core, eventBus *eventbus.Core) *app {
	return &app{
		userBus:  userBus,
		eventBus: eventBus,
	}
}

func (a *app) newWithTx(ctx context.Context) (*app, error) {
	tx, err := mid.GetTran(ctx)
	if err != nil {
		return nil, err
	}

	userBus, err := a.userBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	eventBus, err := a.eventBus.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &app{
		userBus:  userBus,
		eventBus: eventBus,
	}, nil
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewEvent
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	ne, err := toBusNewEvent(usr, req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	evt, err := a.eventBus.Create(ctx, ne)
	if err != nil {
		if errors.Is(err, eventbus.ErrInvalidRange) {
			return errs.New(errs.InvalidArgument, eventbus.ErrInvalidRange)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: title[%s]: %s", ne.Title, err)
	}

	return ToAppEvent(evt)
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateEvent
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	evt, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	ue, err := toBusUpdateEvent(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	upd, err := a.eventBus.Update(ctx, evt, ue)
	if err != nil {
		switch {
		case errors.Is(err, eventbus.ErrConflict):
			return errs.New(errs.Aborted, eventbus.ErrConflict)
		case errors.Is(err, eventbus.ErrInvalidRange):
			return errs.New(errs.InvalidArgument, eventbus.ErrInvalidRange)
		case errors.Is(err, eventbus.ErrGoogleEvent):
			return errs.New(errs.FailedPrecondition, eventbus.ErrGoogleEvent)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: eventID[%s]: %s", evt.ID, err)
	}

	return ToAppEvent(upd)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	evt, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.eventBus.Delete(ctx, evt); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: eventID[%s]: %s", evt.ID, err)
	}

	return nil
}

// importGoogle stores the calendar authorization and merges the imported
// events in one transaction.
func (a *app) importGoogle(ctx context.Context, r *http.Request) web.Encoder {
	var req GoogleImport
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	link, batch, err := toBusGoogle(usr, req, sqldb.Now())
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	a, err = a.newWithTx(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	if _, err := a.userBus.ConnectGoogle(ctx, usr, link); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "connectgoogle: userID[%s]: %s", usr.ID, err)
	}

	if err := a.eventBus.MergeGoogle(ctx, batch); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "mergegoogle: userID[%s]: %s", usr.ID, err)
	}

	return nil
}

func (a *app) disconnectGoogle(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	a, err = a.newWithTx(ctx)
	if err != nil {
		return errs.New(errs.Internal, err)
	}

	if _, err := a.userBus.DisconnectGoogle(ctx, usr); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "disconnectgoogle: userID[%s]: %s", usr.ID, err)
	}

	if err := a.eventBus.DeleteGoogle(ctx, usr.ID); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "deletegoogle: userID[%s]: %s", usr.ID, err)
	}

	return nil
}

func (a *app) owned(ctx context.Context, r *http.Request) (eventbus.Event, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return eventbus.Event{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	eventID, err := uuid.Parse(web.Param(r, "event_id"))
	if err != nil {
		return eventbus.Event{}, errs.NewFieldErrors("event_id", err)
	}

	evt, err := a.eventBus.QueryByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventbus.ErrNotFound) {
			return eventbus.Event{}, errs.New(errs.NotFound, eventbus.ErrNotFound)
		}
		return eventbus.Event{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: eventID[%s]: %s", eventID, err)
	}

	if !ownedBy(evt, usr) {
		return eventbus.Event{}, errs.New(errs.NotFound, eventbus.ErrNotFound)
	}

	return evt, nil
}
