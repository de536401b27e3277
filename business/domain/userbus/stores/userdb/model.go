package userdb

import (
	"database/sql"
	"encoding/json"
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

type userDB struct {
	ID                      uuid.UUID      `db:"user_id"`
	OwnerID                 uuid.NullUUID  `db:"owner_id"`
	Name                    string         `db:"name"`
	Email                   string         `db:"email"`
	Role                    string         `db:"role"`
	Avatar                  string         `db:"avatar"`
	Status                  string         `db:"status"`
	Plan                    string         `db:"plan"`
	TrialEndsAt             sql.NullTime   `db:"trial_ends_at"`
	StripeCustomerID        sql.NullString `db:"stripe_customer_id"`
	StripeSubscriptionID    sql.NullString `db:"stripe_subscription_id"`
	GoogleCalendarConnected bool           `db:"google_calendar_connected"`
	GoogleAccessToken       sql.NullString `db:"google_access_token"`
	GoogleTokenExpiry       sql.NullTime   `db:"google_token_expiry"`
	CreatedAt               time.Time      `db:"created_at"`
	UpdatedAt               time.Time      `db:"updated_at"`
}

func toDBUser(bus userbus.User) userDB {
	return userDB{
		ID:                      bus.ID,
		OwnerID:                 uuid.NullUUID{UUID: bus.OwnerID, Valid: bus.OwnerID != uuid.Nil},
		Name:                    bus.Name.String(),
		Email:                   bus.Email.Address,
		Role:                    bus.Role.String(),
		Avatar:                  bus.Avatar,
		Status:                  bus.Status.String(),
		Plan:                    bus.Plan.String(),
		TrialEndsAt:             toNullTime(bus.TrialEndsAt),
		StripeCustomerID:        toNullString(bus.StripeCustomerID),
		StripeSubscriptionID:    toNullString(bus.StripeSubscriptionID),
		GoogleCalendarConnected: bus.GoogleCalendarConnected,
		GoogleAccessToken:       toNullString(bus.GoogleAccessToken),
		GoogleTokenExpiry:       toNullTime(bus.GoogleTokenExpiry),
		CreatedAt:               bus.CreatedAt.UTC(),
		UpdatedAt:               bus.UpdatedAt.UTC(),
	}
}

func toBusUser(db userDB) (userbus.User, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse name: %w", err)
	}

	usrRole, err := role.Parse(db.Role)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse role: %w", err)
	}

	st, err := status.Parse(db.Status)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse status: %w", err)
	}

	pl, err := plan.Parse(db.Plan)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parse plan: %w", err)
	}

	// Rows written before tenants existed carry no owner; such a user owns
	// their own tenant.
	ownerID := db.ID
	if db.OwnerID.Valid {
		ownerID = db.OwnerID.UUID
	}

	bus := userbus.User{
		ID:                      db.ID,
		OwnerID:                 ownerID,
		Name:                    nme,
		Email:                   mail.Address{Address: db.Email},
		Role:                    usrRole,
		Avatar:                  db.Avatar,
		Status:                  st,
		Plan:                    pl,
		TrialEndsAt:             fromNullTime(db.TrialEndsAt),
		StripeCustomerID:        db.StripeCustomerID.String,
		StripeSubscriptionID:    db.StripeSubscriptionID.String,
		GoogleCalendarConnected: db.GoogleCalendarConnected,
		GoogleAccessToken:       db.GoogleAccessToken.String,
		GoogleTokenExpiry:       fromNullTime(db.GoogleTokenExpiry),
		CreatedAt:               db.CreatedAt.UTC(),
		UpdatedAt:               db.UpdatedAt.UTC(),
	}

	return bus, nil
}

func toBusUsers(dbs []userDB) ([]userbus.User, error) {
	bus := make([]userbus.User, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusUser(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// =============================================================================

type identityDB struct {
	ID           uuid.UUID `db:"identity_id"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Metadata     []byte    `db:"metadata"`
	CreatedAt    time.Time `db:"created_at"`
}

func toDBIdentity(bus userbus.Identity) (identityDB, error) {
	md, err := json.Marshal(bus.Metadata)
	if err != nil {
		return identityDB{}, fmt.Errorf("marshal metadata: %w", err)
	}

	db := identityDB{
		ID:           bus.ID,
		Email:        bus.Email.Address,
		PasswordHash: bus.PasswordHash,
		Metadata:     md,
		CreatedAt:    bus.CreatedAt.UTC(),
	}

	return db, nil
}

func toBusIdentity(db identityDB) (userbus.Identity, error) {
	var md userbus.Metadata
	if len(db.Metadata) > 0 {
		if err := json.Unmarshal(db.Metadata, &md); err != nil {
			return userbus.Identity{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	bus := userbus.Identity{
		ID:           db.ID,
		Email:        mail.Address{Address: db.Email},
		PasswordHash: db.PasswordHash,
		Metadata:     md,
		CreatedAt:    db.CreatedAt.UTC(),
	}

	return bus, nil
}

// =============================================================================

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
