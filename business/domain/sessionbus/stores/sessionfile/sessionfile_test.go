package sessionfile_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus/stores/sessionfile"
)

func Test_Slot(t *testing.T) {
	dir := t.TempDir()

	store, err := sessionfile.NewStore(dir)
	if err != nil {
		t.Fatalf("Should be able to open the store: %s", err)
	}

	ctx := context.Background()

	if _, err := store.Get(ctx, "JHGESTOR_SESSION"); !errors.Is(err, sessionbus.ErrNotFound) {
		t.Fatalf("Should report an empty slot, got %v", err)
	}

	for _, v := range []string{`{"id":"a"}`, `{"id":"b"}`} {
		if err := store.Set(ctx, "JHGESTOR_SESSION", []byte(v)); err != nil {
			t.Fatalf("Should be able to set: %s", err)
		}

		got, err := store.Get(ctx, "JHGESTOR_SESSION")
		if err != nil {
			t.Fatalf("Should be able to get: %s", err)
		}
		if string(got) != v {
			t.Errorf("got %s, exp %s", got, v)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %s", err)
	}
	if len(entries) != 1 {
		t.Errorf("Should leave no temp files behind, got %d entries", len(entries))
	}

	if err := store.Delete(ctx, "JHGESTOR_SESSION"); err != nil {
		t.Fatalf("Should be able to delete: %s", err)
	}
	if err := store.Delete(ctx, "JHGESTOR_SESSION"); err != nil {
		t.Fatalf("Should be able to delete an empty slot: %s", err)
	}
}
