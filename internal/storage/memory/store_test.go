package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Havens-blog/e-cam-web/internal/storage"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := New()
	ctx := context.Background()

	value := []byte("tok")
	if err := store.Set(ctx, "cam_token", value, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, ok, err := store.Get(ctx, "cam_token")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, want value", ok, err)
	}
	if string(got) != "tok" {
		t.Errorf("Get() = %q, want %q", got, "tok")
	}

	if err := store.Delete(ctx, "cam_token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cam_token"); ok {
		t.Error("Get() after Delete() found value")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := New()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 7*24*time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	now = now.Add(6 * 24 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Error("Get() before expiry found nothing")
	}

	now = now.Add(2 * 24 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("Get() after expiry still found value")
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	store := New()
	store.Close()

	if err := store.Set(context.Background(), "k", nil, 0); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Set() after Close() error = %v, want ErrClosed", err)
	}
}
