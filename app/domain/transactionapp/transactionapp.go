// Package transactionapp maintains the app layer api for the financial
// ledger.
package transactionapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	transactionBus *transactionbus.Core
}

func newApp(transactionBus *transactionbus.Core) *app {
	return &app{
		transactionBus: transactionBus,
	}
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var req NewTransaction
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	nt, err := toBusNewTransaction(usr.OwnerID, req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	trx, err := a.transactionBus.Create(ctx, nt)
	if err != nil {
		if errors.Is(err, transactionbus.ErrInvalidAmount) {
			return errs.New(errs.InvalidArgument, transactionbus.ErrInvalidAmount)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: nt[%+v]: %s", nt, err)
	}

	return ToAppTransaction(trx)
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var req UpdateTransaction
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	trx, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	ut, err := toBusUpdateTransaction(req)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	upd, err := a.transactionBus.Update(ctx, trx, ut)
	if err != nil {
		switch {
		case errors.Is(err, transactionbus.ErrConflict):
			return errs.New(errs.Aborted, transactionbus.ErrConflict)
		case errors.Is(err, transactionbus.ErrInvalidAmount):
			return errs.New(errs.InvalidArgument, transactionbus.ErrInvalidAmount)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: transactionID[%s]: %s", trx.ID, err)
	}

	return ToAppTransaction(upd)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	trx, resp := a.owned(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.transactionBus.Delete(ctx, trx); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "delete: transactionID[%s]: %s", trx.ID, err)
	}

	return nil
}

func (a *app) owned(ctx context.Context, r *http.Request) (transactionbus.Transaction, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return transactionbus.Transaction{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	trxID, err := uuid.Parse(web.Param(r, "transaction_id"))
	if err != nil {
		return transactionbus.Transaction{}, errs.NewFieldErrors("transaction_id", err)
	}

	trx, err := a.transactionBus.QueryByID(ctx, trxID)
	if err != nil {
		if errors.Is(err, transactionbus.ErrNotFound) {
			return transactionbus.Transaction{}, errs.New(errs.NotFound, transactionbus.ErrNotFound)
		}
		return transactionbus.Transaction{}, errs.Errorf(errs.InternalOnlyLog, "querybyid: transactionID[%s]: %s", trxID, err)
	}

	if trx.OwnerID != usr.OwnerID {
		return transactionbus.Transaction{}, errs.New(errs.NotFound, transactionbus.ErrNotFound)
	}

	return trx, nil
}
