package testsupport

import (
	"context"
	"testing"

	"magf/internal/catalog"
	"magf/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustCreate stores a container built from req.
func MustCreate(t testing.TB, store *catalog.Store, req catalog.CreateRequest) *catalog.Entry {
	t.Helper()

	entry, err := store.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return entry
}
