// Package adsapp maintains the app layer api for the ads integration.
package adsapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
)

type app struct {
	adsBus  *adsbus.Core
	metaBus *metabus.Core
	graph   *meta.Client
}

func newApp(cfg Config) *app {
	return &app{
		adsBus:  cfg.AdsBus,
		metaBus: cfg.MetaBus,
		graph:   cfg.Graph,
	}
}

func (a *app) queryConfig(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	cfg, err := a.metaBus.QueryByOwner(ctx, usr.OwnerID)
	if err != nil {
		if errors.Is(err, metabus.ErrNotFound) {
			return errs.New(errs.NotFound, metabus.ErrNotFound)
		}
		return errs.Errorf(errs.InternalOnlyLog, "querybyowner: ownerID[%s]: %s", usr.OwnerID, err)
	}

	return toAppMetaConfig(cfg)
}

func (a *app) saveConfig(ctx context.Context, r *http.Request) web.Encoder {
	var req SaveConfig
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	nc := metabus.NewConfig{
		OwnerID:       usr.OwnerID,
		AccessToken:   req.AccessToken,
		AdAccountID:   req.AdAccountID,
		AdAccountName: req.AdAccountName,
	}

	cfg, err := a.metaBus.Save(ctx, nc)
	if err != nil {
		if errors.Is(err, metabus.ErrMissingField) {
			return errs.New(errs.InvalidArgument, metabus.ErrMissingField)
		}
		return errs.Errorf(errs.InternalOnlyLog, "save: ownerID[%s]: %s", usr.OwnerID, err)
	}

	return toAppMetaConfig(cfg)
}

func (a *app) clearConfig(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	if err := a.metaBus.Clear(ctx, usr.OwnerID); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "clear: ownerID[%s]: %s", usr.OwnerID, err)
	}

	return nil
}

// accounts lists the ads accounts of the token in the query string, or of
// the linked account's token when none is given.
func (a *app) accounts(ctx context.Context, r *http.Request) web.Encoder {
	token := r.URL.Query().Get("token")
	if token == "" {
		cfg, resp := a.linked(ctx)
		if resp != nil {
			return resp
		}
		token = cfg.AccessToken
	}

	accts, err := a.graph.AdAccounts(ctx, token)
	if err != nil {
		return graphError(err)
	}

	return Accounts(accts)
}

func (a *app) campaigns(ctx context.Context, _ *http.Request) web.Encoder {
	cfg, resp := a.linked(ctx)
	if resp != nil {
		return resp
	}

	cmps, err := a.graph.Campaigns(ctx, cfg.AdAccountID, cfg.AccessToken)
	if err != nil {
		return graphError(err)
	}

	return Campaigns(cmps)
}

func (a *app) insights(ctx context.Context, r *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	dr, err := parseDateRange(r)
	if err != nil {
		return errs.NewFieldErrors("range", err)
	}

	m, err := a.adsBus.QueryMetricsRange(ctx, usr.OwnerID, dr)
	if err != nil {
		return graphError(err)
	}

	return ToAppMetrics(m)
}

// =============================================================================

func (a *app) linked(ctx context.Context) (metabus.Config, web.Encoder) {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return metabus.Config{}, errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	cfg, err := a.metaBus.QueryByOwner(ctx, usr.OwnerID)
	if err != nil {
		if errors.Is(err, metabus.ErrNotFound) {
			return metabus.Config{}, errs.New(errs.FailedPrecondition, metabus.ErrNotFound)
		}
		return metabus.Config{}, errs.Errorf(errs.InternalOnlyLog, "querybyowner: ownerID[%s]: %s", usr.OwnerID, err)
	}

	return cfg, nil
}

// graphError passes the Graph API's own message through; it never contains
// the token.
func graphError(err error) web.Encoder {
	var gerr *meta.Error
	if errors.As(err, &gerr) {
		return errs.Errorf(errs.FailedPrecondition, "meta: %s", gerr.Message)
	}
	return errs.Errorf(errs.Unavailable, "meta: %s", err)
}
