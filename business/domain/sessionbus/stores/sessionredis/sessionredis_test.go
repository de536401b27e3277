package sessionredis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus/stores/sessionredis"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T, ttl time.Duration) (*sessionredis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return sessionredis.NewStore(logger.Discard(), client, ttl), mr
}

func Test_Slot(t *testing.T) {
	store, mr := newStore(t, 0)
	ctx := context.Background()

	if _, err := store.Get(ctx, "JHGESTOR_SESSION"); !errors.Is(err, sessionbus.ErrNotFound) {
		t.Fatalf("Should report an empty slot, got %v", err)
	}

	if err := store.Set(ctx, "JHGESTOR_SESSION", []byte(`{"id":"x"}`)); err != nil {
		t.Fatalf("Should be able to set: %s", err)
	}

	got, err := store.Get(ctx, "JHGESTOR_SESSION")
	if err != nil {
		t.Fatalf("Should be able to get: %s", err)
	}
	if string(got) != `{"id":"x"}` {
		t.Errorf("got %s", got)
	}

	if mr.TTL("JHGESTOR_SESSION") != 0 {
		t.Errorf("Should not expire, got ttl %s", mr.TTL("JHGESTOR_SESSION"))
	}

	if err := store.Delete(ctx, "JHGESTOR_SESSION"); err != nil {
		t.Fatalf("Should be able to delete: %s", err)
	}
	if err := store.Delete(ctx, "JHGESTOR_SESSION"); err != nil {
		t.Fatalf("Should be able to delete an empty slot: %s", err)
	}

	if mr.Exists("JHGESTOR_SESSION") {
		t.Error("Should have removed the key")
	}
}

func Test_SlotTTL(t *testing.T) {
	store, mr := newStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Set(ctx, "APP_SESSION", []byte(`{}`)); err != nil {
		t.Fatalf("Should be able to set: %s", err)
	}

	if mr.TTL("APP_SESSION") != time.Hour {
		t.Errorf("got ttl %s", mr.TTL("APP_SESSION"))
	}

	mr.FastForward(2 * time.Hour)

	if _, err := store.Get(ctx, "APP_SESSION"); !errors.Is(err, sessionbus.ErrNotFound) {
		t.Errorf("Should expire, got %v", err)
	}
}
