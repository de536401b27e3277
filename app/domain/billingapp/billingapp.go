// Package billingapp maintains the app layer api for subscriptions: the
// billing view of the host and the checkout and webhook endpoints of the
// billing service.
package billingapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

// maxPayload bounds a webhook body.
const maxPayload = 64 << 10

// EventParser verifies a webhook delivery and decodes the event in it.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (billingbus.Event, error)
}

type app struct {
	log           *logger.Logger
	billingBus    *billingbus.Core
	events        EventParser
	defaultOrigin string
}

func newApp(cfg ProcessorConfig) *app {
	return &app{
		log:           cfg.Log,
		billingBus:    cfg.BillingBus,
		events:        cfg.Events,
		defaultOrigin: cfg.DefaultOrigin,
	}
}

// subscription returns the billing view of the session user. It is served
// while the session is blocked.
func subscription(ctx context.Context, _ *http.Request) web.Encoder {
	usr, err := mid.GetUser(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "user missing in context: %s", err)
	}

	return toAppSubscription(usr)
}

// =============================================================================

func (a *app) billing(ctx context.Context, r *http.Request) web.Encoder {
	var req Request
	if err := web.Decode(r, &req); err != nil {
		return Failure{Error: err.Error()}
	}

	userID, pl, err := parseRequest(req)
	if err != nil {
		return Failure{Error: err.Error()}
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = a.defaultOrigin
	}

	var url string
	switch req.Action {
	case ActionCheckout:
		url, err = a.billingBus.Checkout(ctx, userID, pl, origin)
	case ActionPortal:
		url, err = a.billingBus.Portal(ctx, userID, origin)
	default:
		err = fmt.Errorf("unknown action %q", req.Action)
	}

	if err != nil {
		a.log.Error(ctx, "billing request failed", "action", req.Action, "userID", userID, "ERROR", err)
		return Failure{Error: err.Error()}
	}

	return Redirect{URL: url}
}

func (a *app) webhook(ctx context.Context, r *http.Request) web.Encoder {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayload))
	if err != nil {
		return Failure{Error: fmt.Sprintf("read payload: %s", err)}
	}

	evt, err := a.events.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		a.log.Warn(ctx, "webhook rejected", "ERROR", err)
		return Failure{Error: err.Error()}
	}

	if err := a.billingBus.HandleEvent(ctx, evt); err != nil {
		if errors.Is(err, billingbus.ErrMissingUser) {
			return Failure{Error: err.Error()}
		}
		return errs.Errorf(errs.InternalOnlyLog, "handleevent: id[%s] type[%s]: %s", evt.ID, evt.Type, err)
	}

	return Received{Received: true}
}
