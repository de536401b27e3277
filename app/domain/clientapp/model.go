package clientapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/phone"
)

// Client represents a customer of the tenant.
type Client struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Observations string `json:"observations"`
	DateCreated  string `json:"dateCreated"`
	DateUpdated  string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (c Client) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

// ToAppClient converts a client for the wire.
func ToAppClient(bus clientbus.Client) Client {
	return Client{
		ID:           bus.ID.String(),
		OwnerID:      bus.OwnerID.String(),
		Name:         bus.Name.String(),
		Email:        bus.Email,
		Phone:        bus.Phone.String(),
		Observations: bus.Observations,
		DateCreated:  bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:  bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppClients converts a list of clients.
func ToAppClients(clients []clientbus.Client) []Client {
	app := make([]Client, len(clients))
	for i, cln := range clients {
		app[i] = ToAppClient(cln)
	}
	return app
}

// =============================================================================

// NewClient defines the data needed to add a client.
type NewClient struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Observations string `json:"observations"`
}

// Decode implements the web.Decoder interface.
func (app *NewClient) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewClient) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewClient(ownerID uuid.UUID, app NewClient) (clientbus.NewClient, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return clientbus.NewClient{}, fmt.Errorf("parse name: %w", err)
	}

	ph, err := phone.ParseNull(app.Phone)
	if err != nil {
		return clientbus.NewClient{}, fmt.Errorf("parse phone: %w", err)
	}

	bus := clientbus.NewClient{
		OwnerID:      ownerID,
		Name:         nme,
		Email:        app.Email,
		Phone:        ph,
		Observations: app.Observations,
	}

	return bus, nil
}

// =============================================================================

// UpdateClient defines the data needed to update a client. Version is the
// dateUpdated the caller last read.
type UpdateClient struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Observations *string `json:"observations"`
	Version      *string `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateClient) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateClient) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateClient(app UpdateClient) (clientbus.UpdateClient, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return clientbus.UpdateClient{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var ph *phone.Null
	if app.Phone != nil {
		p, err := phone.ParseNull(*app.Phone)
		if err != nil {
			return clientbus.UpdateClient{}, fmt.Errorf("parse phone: %w", err)
		}
		ph = &p
	}

	var version *time.Time
	if app.Version != nil {
		v, err := time.Parse(time.RFC3339Nano, *app.Version)
		if err != nil {
			return clientbus.UpdateClient{}, fmt.Errorf("parse version: %w", err)
		}
		version = &v
	}

	bus := clientbus.UpdateClient{
		Name:         nme,
		Email:        app.Email,
		Phone:        ph,
		Observations: app.Observations,
		Version:      version,
	}

	return bus, nil
}
