package userbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/business/types/status"
)

// User is the tenant scoped profile of a person. OwnerID equals ID for the
// administrator that owns the tenant and points at that administrator for
// every invited member.
type User struct {
	ID                      uuid.UUID
	OwnerID                 uuid.UUID
	Name                    name.Name
	Email                   mail.Address
	Role                    role.Role
	Avatar                  string
	Status                  status.Status
	Plan                    plan.Plan
	TrialEndsAt             *time.Time
	StripeCustomerID        string
	StripeSubscriptionID    string
	GoogleCalendarConnected bool
	GoogleAccessToken       string
	GoogleTokenExpiry       *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsOwner reports whether the user is the administrator owning the tenant.
func (u User) IsOwner() bool {
	return u.ID == u.OwnerID
}

// Identity is the credential record kept by the identity provider. Metadata
// carries whatever the provider knew about the person at sign up and is only
// used to backfill a profile.
type Identity struct {
	ID           uuid.UUID
	Email        mail.Address
	PasswordHash []byte
	Metadata     Metadata
	CreatedAt    time.Time
}

// Metadata holds provider side attributes. Every field may be empty.
type Metadata struct {
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Plan    string `json:"plan,omitempty"`
}

// NewUser contains information needed to register a new tenant owner.
type NewUser struct {
	Name     name.Name
	Email    mail.Address
	Password string
}

// NewMember contains information needed for an administrator to add a user
// to their tenant.
type NewMember struct {
	OwnerID  uuid.UUID
	Name     name.Name
	Email    mail.Address
	Role     role.Role
	Password string
}

// UpdateUser contains information needed to update a user. Version, when set,
// must match the UpdatedAt of the stored row.
type UpdateUser struct {
	Name     *name.Name
	Email    *mail.Address
	Avatar   *string
	Password *string
	Version  *time.Time
}

// UpdateSubscription carries billing driven changes.
type UpdateSubscription struct {
	Plan                 *plan.Plan
	Status               *status.Status
	StripeCustomerID     *string
	StripeSubscriptionID *string
}

// GoogleLink is the calendar authorization granted by a user.
type GoogleLink struct {
	AccessToken string
	Expiry      time.Time
}
