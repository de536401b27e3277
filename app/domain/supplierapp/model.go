package supplierapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
)

// Supplier represents a vendor of the tenant.
type Supplier struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Category    string `json:"category"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (s Supplier) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

// ToAppSupplier converts a supplier for the wire.
func ToAppSupplier(bus supplierbus.Supplier) Supplier {
	return Supplier{
		ID:          bus.ID.String(),
		OwnerID:     bus.OwnerID.String(),
		Name:        bus.Name.String(),
		Contact:     bus.Contact,
		Email:       bus.Email,
		Category:    bus.Category,
		DateCreated: bus.CreatedAt.Format(time.RFC3339),
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppSuppliers converts a list of suppliers.
func ToAppSuppliers(sups []supplierbus.Supplier) []Supplier {
	app := make([]Supplier, len(sups))
	for i, sup := range sups {
		app[i] = ToAppSupplier(sup)
	}
	return app
}

// =============================================================================

// NewSupplier defines the data needed to add a supplier.
type NewSupplier struct {
	Name     string `json:"name" validate:"required"`
	Contact  string `json:"contact"`
	Email    string `json:"email" validate:"omitempty,email"`
	Category string `json:"category"`
}

// Decode implements the web.Decoder interface.
func (app *NewSupplier) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewSupplier) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewSupplier(ownerID uuid.UUID, app NewSupplier) (supplierbus.NewSupplier, error) {
	nme, err := name.Parse(app.Name)
	if err != nil {
		return supplierbus.NewSupplier{}, fmt.Errorf("parse name: %w", err)
	}

	bus := supplierbus.NewSupplier{
		OwnerID:  ownerID,
		Name:     nme,
		Contact:  app.Contact,
		Email:    app.Email,
		Category: app.Category,
	}

	return bus, nil
}

// =============================================================================

// UpdateSupplier defines the data needed to update a supplier.
type UpdateSupplier struct {
	Name     *string `json:"name"`
	Contact  *string `json:"contact"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Category *string `json:"category"`
	Version  *string `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateSupplier) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateSupplier) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateSupplier(app UpdateSupplier) (supplierbus.UpdateSupplier, error) {
	var nme *name.Name
	if app.Name != nil {
		nm, err := name.Parse(*app.Name)
		if err != nil {
			return supplierbus.UpdateSupplier{}, fmt.Errorf("parse name: %w", err)
		}
		nme = &nm
	}

	var version *time.Time
	if app.Version != nil {
		v, err := time.Parse(time.RFC3339Nano, *app.Version)
		if err != nil {
			return supplierbus.UpdateSupplier{}, fmt.Errorf("parse version: %w", err)
		}
		version = &v
	}

	bus := supplierbus.UpdateSupplier{
		Name:     nme,
		Contact:  app.Contact,
		Email:    app.Email,
		Category: app.Category,
		Version:  version,
	}

	return bus, nil
}
