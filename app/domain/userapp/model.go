package userapp

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/domain/sessionapp"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/role"
)

// User represents information about a member of the tenant.
type User struct {
	sessionapp.User
}

// Encode implements the web.Encoder interface.
func (u User) Encode() ([]byte, string, error) {
	data, err := json.Marshal(u)
	return data, "application/json", err
}

func toAppUser(bus userbus.User) User {
	return User{User: sessionapp.ToAppUser(bus)}
}

// Team is the list of members of the tenant.
type Team []sessionapp.User

// Encode implements the web.Encoder interface.
func (t Team) Encode() ([]byte, string, error) {
	data, err := json.Marshal(t)
	return data, "application/json", err
}

// =============================================================================

// NewUser defines the data needed for an administrator to add a member.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *NewUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewUser) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewMember(ownerID uuid.UUID, app NewUser) (userbus.NewMember, error) {
	var rle role.Role
	if app.Role != "" {
		r, err := role.Parse(app.Role)
		if err != nil {
			return userbus.NewMember{}, fmt.Errorf("parse role: %w", err)
		}
		rle = r
	}

	addr, err := mail.ParseAddress(app.Email)
	if err != nil {
		return userbus.NewMember{}, fmt.Errorf("parse email: %w", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		return userbus.NewMember{}, fmt.Errorf("parse name: %w", err)
	}

	bus := userbus.NewMember{
		OwnerID:  ownerID,
		Name:     nme,
		Email:    *addr,
		Role:     rle,
		Password: app.Password,
	}

	return bus, nil
}

// =============================================================================

// UpdateUser defines the data needed to update the caller's profile.
type UpdateUser struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Avatar          *string `json:"avatar"`
	Password        *string `json:"password" validate:"omitempty,min=6"`
	PasswordConfirm *string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
	Version         *string `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateUser) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateUser(app UpdateUser) (userbus.UpdateUser, error) {
	var addr *mail.Address
	if app.Email != nil {
		var err error
		addr, err = mail.ParseAddress(*app.Email)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse email: %w", err)
		}
	}

	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var version *time.Time
	if app.Version != nil {
		v, err := time.Parse(time.RFC3339Nano, *app.Version)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("parse version: %w", err)
		}
		version = &v
	}

	bus := userbus.UpdateUser{
		Name:     nme,
		Email:    addr,
		Avatar:   app.Avatar,
		Password: app.Password,
		Version:  version,
	}

	return bus, nil
}
