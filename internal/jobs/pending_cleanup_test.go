package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/tfia/ywt-server/internal/config"
	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

func TestPendingCleanupRemovesStaleRegistrations(t *testing.T) {
	store := repository.NewMemory()
	now := time.Now().UTC()

	stale := model.PendingAccount{
		Username:  "stale",
		Email:     "stale@example.com",
		CreatedAt: now.Add(-100 * time.Hour),
	}
	fresh := model.PendingAccount{
		Username:  "fresh",
		Email:     "fresh@example.com",
		CreatedAt: now,
	}
	if err := store.CreatePending(context.Background(), stale); err != nil {
		t.Fatalf("seed stale: %v", err)
	}
	if err := store.CreatePending(context.Background(), fresh); err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Config{
		ActivationTTL:          72 * time.Hour,
		PendingCleanupEnabled:  true,
		PendingCleanupInterval: 10 * time.Millisecond,
	}
	StartPendingCleanupJob(ctx, cfg, store)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := store.GetPending(context.Background(), "stale"); err == repository.ErrNotFound {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stale pending registration was not cleaned up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := store.GetPending(context.Background(), "fresh"); err != nil {
		t.Fatalf("fresh pending registration should survive: %v", err)
	}
}

func TestPendingCleanupDisabled(t *testing.T) {
	store := repository.NewMemory()
	if err := store.CreatePending(context.Background(), model.PendingAccount{
		Username:  "stale",
		CreatedAt: time.Now().UTC().Add(-100 * time.Hour),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Config{
		ActivationTTL:          72 * time.Hour,
		PendingCleanupEnabled:  false,
		PendingCleanupInterval: 10 * time.Millisecond,
	}
	StartPendingCleanupJob(ctx, cfg, store)

	time.Sleep(100 * time.Millisecond)
	if _, err := store.GetPending(context.Background(), "stale"); err != nil {
		t.Fatalf("cleanup ran while disabled: %v", err)
	}
}
