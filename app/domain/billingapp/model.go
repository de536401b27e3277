package billingapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
)

// Subscription is the billing view of the session user.
type Subscription struct {
	State       sessionbus.State `json:"state"`
	Plan        string           `json:"plan"`
	Status      string           `json:"status"`
	TrialEndsAt string           `json:"trialEndsAt,omitempty"`
	HasCustomer bool             `json:"hasCustomer"`
	Message     string           `json:"message,omitempty"`
}

// Encode implements the web.Encoder interface.
func (s Subscription) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func toAppSubscription(usr userbus.User) Subscription {
	s := Subscription{
		State:       sessionbus.StateOf(usr, true),
		Plan:        usr.Plan.String(),
		Status:      usr.Status.String(),
		HasCustomer: usr.StripeCustomerID != "",
	}

	if usr.TrialEndsAt != nil {
		s.TrialEndsAt = usr.TrialEndsAt.Format(time.RFC3339)
	}

	if s.State == sessionbus.AuthenticatedBlocked {
		s.Message = sessionbus.BlockedMessage
	}

	return s
}

// =============================================================================

// Set of actions the billing endpoint accepts.
const (
	ActionCheckout = "create-checkout"
	ActionPortal   = "create-portal"
)

// Request asks for a checkout or a portal page.
type Request struct {
	Action string `json:"action" validate:"required,oneof=create-checkout create-portal"`
	UserID string `json:"userId" validate:"required,uuid"`
	Plan   string `json:"plan"`
}

// Decode implements the web.Decoder interface.
func (app *Request) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Request) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func parseRequest(app Request) (uuid.UUID, plan.Plan, error) {
	userID, err := uuid.Parse(app.UserID)
	if err != nil {
		return uuid.Nil, plan.Plan{}, fmt.Errorf("parse userId: %w", err)
	}

	var pl plan.Plan
	if app.Plan != "" {
		p, err := plan.Parse(app.Plan)
		if err != nil {
			return uuid.Nil, plan.Plan{}, fmt.Errorf("parse plan: %w", err)
		}
		pl = p
	}

	return userID, pl, nil
}

// Redirect carries the page the caller should open.
type Redirect struct {
	URL string `json:"url"`
}

// Encode implements the web.Encoder interface.
func (r Redirect) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

// Failure is the billing endpoint's error body.
type Failure struct {
	Error string `json:"error"`
}

// Encode implements the web.Encoder interface.
func (f Failure) Encode() ([]byte, string, error) {
	data, err := json.Marshal(f)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface.
func (Failure) HTTPStatus() int {
	return http.StatusBadRequest
}

// Received acknowledges a webhook delivery.
type Received struct {
	Received bool `json:"received"`
}

// Encode implements the web.Encoder interface.
func (r Received) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}
