package metabus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
)

type memStore struct {
	cfgs map[uuid.UUID]metabus.Config
}

func (m *memStore) Upsert(ctx context.Context, cfg metabus.Config) error {
	m.cfgs[cfg.OwnerID] = cfg
	return nil
}

func (m *memStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	delete(m.cfgs, ownerID)
	return nil
}

func (m *memStore) QueryByOwner(ctx context.Context, ownerID uuid.UUID) (metabus.Config, error) {
	cfg, ok := m.cfgs[ownerID]
	if !ok {
		return metabus.Config{}, metabus.ErrNotFound
	}
	return cfg, nil
}

func Test_Save(t *testing.T) {
	ctx := context.Background()
	core := metabus.NewCore(&memStore{cfgs: make(map[uuid.UUID]metabus.Config)})
	ownerID := uuid.New()

	table := []struct {
		name string
		nc   metabus.NewConfig
		exp  error
	}{
		{"no-token", metabus.NewConfig{OwnerID: ownerID, AdAccountID: "act_1"}, metabus.ErrMissingField},
		{"no-account", metabus.NewConfig{OwnerID: ownerID, AccessToken: "EAAB"}, metabus.ErrMissingField},
		{"first", metabus.NewConfig{OwnerID: ownerID, AccessToken: "EAAB", AdAccountID: "act_1", AdAccountName: "Loja"}, nil},
		{"replace", metabus.NewConfig{OwnerID: ownerID, AccessToken: "EAAC", AdAccountID: "act_2", AdAccountName: "Loja 2"}, nil},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.Save(ctx, tt.nc)
			if !errors.Is(err, tt.exp) {
				t.Fatalf("got %v, want %v", err, tt.exp)
			}
		})
	}

	cfg, err := core.QueryByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}
	if cfg.AdAccountID != "act_2" || cfg.AccessToken != "EAAC" {
		t.Errorf("Should keep the last account, got %+v", cfg)
	}

	if err := core.Clear(ctx, ownerID); err != nil {
		t.Fatalf("Should be able to clear: %s", err)
	}
	if _, err := core.QueryByOwner(ctx, ownerID); !errors.Is(err, metabus.ErrNotFound) {
		t.Errorf("got %v, want %v", err, metabus.ErrNotFound)
	}
}
