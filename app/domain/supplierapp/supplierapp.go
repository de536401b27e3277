// Package supplierapp maintains the app layer api for the supplier domain.
package supplierapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	supplierBus *supplierbus.Core
}

func newApp(supplierBus *supplierbus.Core) *app {
	return &app{
		supplierBus: supplierBus,
	}
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewSupplier
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	ns, err := toBusNewSupplier(usr.OwnerID, req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	sup, err := a.supplierBus.Create(ctx, ns)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create: ns[%+v]: %s", ns, err)
	}

	return ToAppSupplier(sup)
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateSupplier
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	sup, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	us, err := toBusUpdateSupplier(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	upd, err := a.supplierBus.Update(ctx, sup, us)
	if err != nil {
		if errors.Is(err, supplierbus.ErrConflict) {
			return errs.New(errs.Aborted, supplierbus.ErrConflict)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: supplierID[%s]: %s", sup.ID, err)
	}

	return ToAppSupplier(upd)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	sup, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.supplierBus.Delete(ctx, sup); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: supplierID[%s]: %s", sup.ID, err)
	}

	return nil
}

func (a *app) owned(ctx context.Context, r *http.Request) (supplierbus.Supplier, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return supplierbus.Supplier{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	supplierID, err := uuid.Parse(web.Param(r, "supplier_id"))
	if err != nil {
		return supplierbus.Supplier{}, errs.NewFieldErrors("supplier_id", err)
	}

	sup, err := a.supplierBus.QueryByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, supplierbus.ErrNotFound) {
			return supplierbus.Supplier{}, errs.New(errs.NotFound, supplierbus.ErrNotFound)
		}
		return supplierbus.Supplier{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: supplierID[%s]: %s", supplierID, err)
	}

	if sup.OwnerID != usr.OwnerID {
		return supplierbus.Supplier{}, errs.New(errs.NotFound, supplierbus.ErrNotFound)
	}

	return sup, nil
}
