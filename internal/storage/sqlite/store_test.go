package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/storage"
)

func TestSQLiteStore_SetGetDelete(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "cam_token", []byte("tok"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := store.Get(ctx, "cam_token")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, want value", ok, err)
	}
	if string(got) != "tok" {
		t.Errorf("Get() = %q, want %q", got, "tok")
	}

	if err := store.Set(ctx, "cam_token", []byte("tok2"), time.Hour); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _, _ = store.Get(ctx, "cam_token")
	if string(got) != "tok2" {
		t.Errorf("Get() after overwrite = %q, want %q", got, "tok2")
	}

	if err := store.Delete(ctx, "cam_token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cam_token"); ok {
		t.Error("Get() after Delete() found value")
	}
}

func TestSQLiteStore_Expiry(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	if err := store.Set(ctx, "cam_tenantId", []byte("acme"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cam_tenantId"); !ok {
		t.Fatal("Get() before expiry found nothing")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "cam_tenantId"); ok {
		t.Error("Get() after expiry still found value")
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Set(ctx, "cam_token", []byte("persisted"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "cam_token")
	if err != nil || !ok || string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	store.Close()

	if _, _, err := store.Get(context.Background(), "x"); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Get() after Close() error = %v, want ErrClosed", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
