package syncapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/status"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

type session struct {
	usr *userbus.User
}

func (s *session) Current(ctx context.Context) (userbus.User, bool) {
	if s.usr == nil {
		return userbus.User{}, false
	}
	return *s.usr, true
}

func (s *session) Refresh(ctx context.Context, usr userbus.User) (bool, error) {
	if s.usr == nil || s.usr.ID != usr.ID {
		return false, nil
	}
	s.usr = &usr
	return true, nil
}

type gateway struct {
	profile userbus.User
	err     error
}

func (g *gateway) Profile(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	return g.profile, nil
}

func (g *gateway) Team(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	return []userbus.User{g.profile}, nil
}

func (g *gateway) Clients(ctx context.Context, ownerID uuid.UUID) ([]clientbus.Client, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []clientbus.Client{{ID: uuid.New(), OwnerID: ownerID}}, nil
}

func (g *gateway) Tasks(ctx context.Context, ownerID uuid.UUID) ([]taskbus.Task, error) {
	return nil, nil
}

func (g *gateway) Transactions(ctx context.Context, ownerID uuid.UUID) ([]transactionbus.Transaction, error) {
	return nil, nil
}

func (g *gateway) Events(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]eventbus.Event, error) {
	return nil, nil
}

func (g *gateway) Messages(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Message, error) {
	return nil, nil
}

func (g *gateway) Groups(ctx context.Context, ownerID uuid.UUID) ([]chatbus.Group, error) {
	return nil, nil
}

func (g *gateway) AdsMetrics(ctx context.Context, ownerID uuid.UUID) (adsbus.Metrics, error) {
	return adsbus.Metrics{OwnerID: ownerID, Period: "last_30d"}, nil
}

func (g *gateway) Suppliers(ctx context.Context, ownerID uuid.UUID) ([]supplierbus.Supplier, error) {
	return nil, nil
}

func owner() userbus.User {
	id := uuid.New()
	return userbus.User{ID: id, OwnerID: id, Status: status.Active}
}

func request() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/sync", nil)
}

func Test_Synchronize(t *testing.T) {
	t.Run("no-session", func(t *testing.T) {
		orch := syncbus.New(logger.Discard(), &session{}, &gateway{}, syncbus.Config{})
		a := newApp(orch)

		resp, ok := a.synchronize(context.Background(), request()).(*errs.Error)
		if !ok {
			t.Fatalf("Should fail, got %T", resp)
		}
		if resp.Code != errs.Unauthenticated {
			t.Errorf("Should be unauthenticated, got %s", resp.Code)
		}
	})

	t.Run("published", func(t *testing.T) {
		usr := owner()
		orch := syncbus.New(logger.Discard(), &session{usr: &usr}, &gateway{profile: usr}, syncbus.Config{})
		a := newApp(orch)

		resp, ok := a.synchronize(context.Background(), request()).(Status)
		if !ok {
			t.Fatalf("Should report a status, got %T", resp)
		}
		if resp.Result != ResultSynced || resp.HTTPStatus() != http.StatusOK || resp.SyncedAt == "" {
			t.Errorf("got %+v", resp)
		}

		snap := toAppSnapshot(orch.Snapshot())
		if len(snap.Clients) != 1 || snap.Profile.ID != usr.ID.String() || snap.Ads.Period != "last_30d" {
			t.Errorf("snapshot: got %+v", snap)
		}
	})

	t.Run("fetch-failure", func(t *testing.T) {
		usr := owner()
		orch := syncbus.New(logger.Discard(), &session{usr: &usr}, &gateway{profile: usr, err: errors.New("connection reset")}, syncbus.Config{})
		a := newApp(orch)

		resp, ok := a.synchronize(context.Background(), request()).(*errs.Error)
		if !ok {
			t.Fatalf("Should fail, got %T", resp)
		}
		if resp.Code != errs.Unavailable {
			t.Errorf("Should be unavailable, got %s", resp.Code)
		}
		if orch.Snapshot() != nil {
			t.Error("Should not publish a partial snapshot")
		}
	})
}

func Test_InFlightStatus(t *testing.T) {
	st := Status{Result: ResultInFlight}
	if st.HTTPStatus() != http.StatusAccepted {
		t.Errorf("got %d", st.HTTPStatus())
	}
}
