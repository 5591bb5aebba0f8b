package sessionstore

import (
	"context"
	"path/filepath"
	"testing"

	"authstamp/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store
}

func TestLoadEmptyStore(t *testing.T) {
	store := openTestStore(t)
	sess, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess != nil {
		t.Fatalf("Load on empty store = %+v, want nil", sess)
	}
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	saved := domain.PersistedSession{
		Address: "7ZUECA7HFLZTXENRV24SHLU4AVPUTMTTDUFUBNBD64C73F3UHRTHAIOF6Q",
		Kind:    domain.WalletKindLocal,
	}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}
	if loaded.Address != saved.Address {
		t.Errorf("address = %q, want %q", loaded.Address, saved.Address)
	}
	if loaded.Kind != domain.WalletKindLocal {
		t.Errorf("kind = %q, want %q", loaded.Kind, domain.WalletKindLocal)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	loaded, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if loaded != nil {
		t.Fatalf("Load after Clear = %+v, want nil", loaded)
	}
	// Clearing again must not fail.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestSaveOverwritesPreviousSession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := domain.PersistedSession{Address: "AAAA", Kind: domain.WalletKindLocal}
	second := domain.PersistedSession{Address: "BBBB", Kind: domain.WalletKindKMD}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save second: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Address != "BBBB" || loaded.Kind != domain.WalletKindKMD {
		t.Fatalf("loaded = %+v, want second session", loaded)
	}
}
