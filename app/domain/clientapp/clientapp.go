// Package clientapp maintains the app layer api for the client domain.
package clientapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	clientBus *clientbus.Core
}

func newApp(clientBus *clientbus.Core) *app {
	return &app{
		clientBus: clientBus,
	}
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewClient
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	nc, err := toBusNewClient(usr.OwnerID, req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	cln, err := a.clientBus.Create(ctx, nc)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create: nc[%+v]: %s", nc, err)
	}

	return ToAppClient(cln)
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateClient
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	cln, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	uc, err := toBusUpdateClient(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	upd, err := a.clientBus.Update(ctx, cln, uc)
	if err != nil {
		if errors.Is(err, clientbus.ErrConflict) {
			return errs.New(errs.Aborted, clientbus.ErrConflict)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: clientID[%s]: %s", cln.ID, err)
	}

	return ToAppClient(upd)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	cln, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.clientBus.Delete(ctx, cln); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: clientID[%s]: %s", cln.ID, err)
	}

	return nil
}

// owned loads the client named in the path. A client of another tenant is
// reported as missing.
func (a *app) owned(ctx context.Context, r *http.Request) (clientbus.Client, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return clientbus.Client{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	clientID, err := uuid.Parse(web.Param(r, "client_id"))
	if err != nil {
		return clientbus.Client{}, errs.NewFieldErrors("client_id", err)
	}

	cln, err := a.clientBus.QueryByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, clientbus.ErrNotFound) {
			return clientbus.Client{}, errs.New(errs.NotFound, clientbus.ErrNotFound)
		}
		return clientbus.Client{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: clientID[%s]: %s", clientID, err)
	}

	if cln.OwnerID != usr.OwnerID {
		return clientbus.Client{}, errs.New(errs.NotFound, clientbus.ErrNotFound)
	}

	return cln, nil
}
