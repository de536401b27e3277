package sessionbus

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/business/types/status"
)

// record is the persisted form of the session user. Older writers stored a
// few keys in snake case; those are read and folded into their camel case
// counterparts, never written.
type record struct {
	ID                      string     `json:"id"`
	OwnerID                 string     `json:"ownerId,omitempty"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email"`
	Role                    string     `json:"role"`
	Avatar                  string     `json:"avatar,omitempty"`
	Status                  string     `json:"status"`
	Plan                    string     `json:"plan"`
	TrialEndsAt             *time.Time `json:"trialEndsAt,omitempty"`
	StripeCustomerID        string     `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID    string     `json:"stripeSubscriptionId,omitempty"`
	GoogleCalendarConnected *bool      `json:"googleCalendarConnected,omitempty"`
	GoogleAccessToken       string     `json:"googleAccessToken,omitempty"`
	GoogleTokenExpiry       *time.Time `json:"googleTokenExpiry,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`

	LegacyOwnerID        string `json:"owner_id,omitempty"`
	LegacyGoogleCalendar *bool  `json:"google_calendar_connected,omitempty"`
}

func toRecord(usr userbus.User) record {
	connected := usr.GoogleCalendarConnected

	return record{
		ID:                      usr.ID.String(),
		OwnerID:                 usr.OwnerID.String(),
		Name:                    usr.Name.String(),
		Email:                   usr.Email.Address,
		Role:                    usr.Role.String(),
		Avatar:                  usr.Avatar,
		Status:                  usr.Status.String(),
		Plan:                    usr.Plan.String(),
		TrialEndsAt:             usr.TrialEndsAt,
		StripeCustomerID:        usr.StripeCustomerID,
		StripeSubscriptionID:    usr.StripeSubscriptionID,
		GoogleCalendarConnected: &connected,
		GoogleAccessToken:       usr.GoogleAccessToken,
		GoogleTokenExpiry:       usr.GoogleTokenExpiry,
		CreatedAt:               usr.CreatedAt,
		UpdatedAt:               usr.UpdatedAt,
	}
}

func toUser(r record) (userbus.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return userbus.User{}, fmt.Errorf("id: %w", err)
	}

	ownerID := id
	switch {
	case r.OwnerID != "":
		if ownerID, err = uuid.Parse(r.OwnerID); err != nil {
			return userbus.User{}, fmt.Errorf("ownerId: %w", err)
		}
	case r.LegacyOwnerID != "":
		if ownerID, err = uuid.Parse(r.LegacyOwnerID); err != nil {
			return userbus.User{}, fmt.Errorf("owner_id: %w", err)
		}
	}

	var connected bool
	switch {
	case r.GoogleCalendarConnected != nil:
		connected = *r.GoogleCalendarConnected
	case r.LegacyGoogleCalendar != nil:
		connected = *r.LegacyGoogleCalendar
	}

	nme, err := name.Parse(r.Name)
	if err != nil {
		nme = name.MustParse(userbus.DefaultName)
	}

	email, err := mail.ParseAddress(r.Email)
	if err != nil {
		return userbus.User{}, fmt.Errorf("email: %w", err)
	}

	rle := role.Admin
	if r.Role != "" {
		if rle, err = role.Parse(r.Role); err != nil {
			return userbus.User{}, err
		}
	}

	sts := status.Active
	if r.Status != "" {
		if sts, err = status.Parse(r.Status); err != nil {
			return userbus.User{}, err
		}
	}

	pln := plan.Free
	if r.Plan != "" {
		if pln, err = plan.Parse(r.Plan); err != nil {
			return userbus.User{}, err
		}
	}

	usr := userbus.User{
		ID:                      id,
		OwnerID:                 ownerID,
		Name:                    nme,
		Email:                   *email,
		Role:                    rle,
		Avatar:                  r.Avatar,
		Status:                  sts,
		Plan:                    pln,
		TrialEndsAt:             r.TrialEndsAt,
		StripeCustomerID:        r.StripeCustomerID,
		StripeSubscriptionID:    r.StripeSubscriptionID,
		GoogleCalendarConnected: connected,
		GoogleAccessToken:       r.GoogleAccessToken,
		GoogleTokenExpiry:       r.GoogleTokenExpiry,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}

	return usr, nil
}
