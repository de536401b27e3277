package mid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
)

// Interstitial is the answer a blocked session gets instead of the route it
// asked for.
type Interstitial struct {
	State   sessionbus.State `json:"state"`
	Message string           `json:"message"`
	Actions []string         `json:"actions"`
}

// Encode implements the encoder interface.
func (i Interstitial) Encode() ([]byte, string, error) {
	data, err := json.Marshal(i)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (Interstitial) HTTPStatus() int {
	return http.StatusPaymentRequired
}

// Gate applies the access gate to a route group. It must run after Session.
func Gate(group string) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			usr, err := GetUser(ctx)
			state := sessionbus.StateOf(usr, err == nil)

			if state.Allowed(group) {
				return next(ctx, r)
			}

			if state == sessionbus.Unauthenticated {
				return errs.New(errs.Unauthenticated, errors.New("no active session"))
			}

			// Only administrators manage the subscription.
			actions := []string{sessionbus.GroupLogout}
			if usr.Role == role.Admin {
				actions = []string{sessionbus.GroupBilling, sessionbus.GroupLogout}
			}

			return Interstitial{
				State:   state,
				Message: sessionbus.BlockedMessage,
				Actions: actions,
			}
		}

		return h
	}

	return m
}
