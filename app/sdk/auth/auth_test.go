package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/foundation/keystore"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

const kid = "s4sKIjD9kIRjxs2tulPqGLdxSfgPErRN1Mu3Hd9k9NQ"

type users map[uuid.UUID]userbus.User

func (u users) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	usr, ok := u[userID]
	if !ok {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func newKeyStore(t *testing.T) *keystore.KeyStore {
	t.Helper()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %s", err)
	}

	block := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(pk),
	}

	ks := keystore.New()
	if err := ks.Add(kid, string(pem.EncodeToMemory(&block))); err != nil {
		t.Fatalf("adding key: %s", err)
	}

	return ks
}

func Test_Auth(t *testing.T) {
	id := uuid.New()
	usr := userbus.User{ID: id, OwnerID: id, Role: role.Admin}
	known := users{id: usr}

	a := auth.New(auth.Config{
		Log:       logger.Discard(),
		Users:     known,
		KeyLookup: newKeyStore(t),
		Issuer:    "jhgestor project",
	})

	token, err := a.GenerateToken(kid, usr)
	if err != nil {
		t.Fatalf("Should be able to generate a token: %s", err)
	}

	ctx := context.Background()

	claims, err := a.Authenticate(ctx, "Bearer "+token)
	if err != nil {
		t.Fatalf("Should be able to authenticate the token: %s", err)
	}

	if claims.Subject != id.String() || claims.OwnerID != id.String() || claims.Role != "ADMIN" {
		t.Errorf("claims: got %+v", claims)
	}

	if err := a.Authorize(ctx, role.Admin, role.Admin); err != nil {
		t.Errorf("Should authorize an admin: %s", err)
	}
	if err := a.Authorize(ctx, role.User, role.Admin); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("Should refuse a user, got %v", err)
	}
	if err := a.Authorize(ctx, role.Admin); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("Should refuse when no role is allowed, got %v", err)
	}

	t.Run("bad-format", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, token); err == nil {
			t.Error("Should require the bearer scheme")
		}
	})

	t.Run("other-issuer", func(t *testing.T) {
		other := auth.New(auth.Config{Log: logger.Discard(), KeyLookup: newKeyStore(t), Issuer: "someone else"})
		tkn, err := other.GenerateToken(kid, usr)
		if err != nil {
			t.Fatalf("generate: %s", err)
		}
		if _, err := a.Authenticate(ctx, "Bearer "+tkn); err == nil {
			t.Error("Should refuse a token signed by another key")
		}
	})

	t.Run("removed-user", func(t *testing.T) {
		delete(known, id)
		defer func() { known[id] = usr }()

		if _, err := a.Authenticate(ctx, "Bearer "+token); !errors.Is(err, auth.ErrUserRemoved) {
			t.Errorf("Should refuse a removed user, got %v", err)
		}
	})
}
