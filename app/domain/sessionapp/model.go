package sessionapp

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
)

// User is the profile bound to the session.
type User struct {
	ID                      string `json:"id"`
	OwnerID                 string `json:"ownerId"`
	Name                    string `json:"name"`
	Email                   string `json:"email"`
	Role                    string `json:"role"`
	Avatar                  string `json:"avatar,omitempty"`
	Status                  string `json:"status"`
	Plan                    string `json:"plan"`
	TrialEndsAt             string `json:"trialEndsAt,omitempty"`
	GoogleCalendarConnected bool   `json:"googleCalendarConnected"`
	DateUpdated             string `json:"dateUpdated"`
}

// ToAppUser converts a profile for the wire.
func ToAppUser(bus userbus.User) User {
	var trial string
	if bus.TrialEndsAt != nil {
		trial = bus.TrialEndsAt.Format(time.RFC3339)
	}

	return User{
		ID:                      bus.ID.String(),
		OwnerID:                 bus.OwnerID.String(),
		Name:                    bus.Name.String(),
		Email:                   bus.Email.Address,
		Role:                    bus.Role.String(),
		Avatar:                  bus.Avatar,
		Status:                  bus.Status.String(),
		Plan:                    bus.Plan.String(),
		TrialEndsAt:             trial,
		GoogleCalendarConnected: bus.GoogleCalendarConnected,
		DateUpdated:             bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppUsers converts a list of profiles.
func ToAppUsers(users []userbus.User) []User {
	app := make([]User, len(users))
	for i, usr := range users {
		app[i] = ToAppUser(usr)
	}
	return app
}

// =============================================================================

// Session is what a client learns about the process session. Token is only
// set by login and register.
type Session struct {
	State   sessionbus.State `json:"state"`
	Token   string           `json:"token,omitempty"`
	User    *User            `json:"user,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Encode implements the web.Encoder interface.
func (s Session) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

func toAppSession(usr userbus.User, ok bool, token string) Session {
	s := Session{
		State: sessionbus.StateOf(usr, ok),
		Token: token,
	}

	if ok {
		u := ToAppUser(usr)
		s.User = &u
	}

	if s.State == sessionbus.AuthenticatedBlocked {
		s.Message = sessionbus.BlockedMessage
	}

	return s
}

// =============================================================================

// Login holds the credentials of a sign in.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *Login) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Login) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// Register holds what a new tenant owner signs up with.
type Register struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *Register) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app Register) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewUser(app Register) (userbus.NewUser, error) {
	addr, err := mail.ParseAddress(app.Email)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse email: %w", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		return userbus.NewUser{}, fmt.Errorf("parse name: %w", err)
	}

	bus := userbus.NewUser{
		Name:     nme,
		Email:    *addr,
		Password: app.Password,
	}

	return bus, nil
}
