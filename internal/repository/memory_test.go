package repository

import (
	"context"
	"testing"
	"time"

	"github.com/tfia/ywt-server/internal/model"
)

func TestPromotePending(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	pending := model.PendingAccount{
		Username:     "alice",
		Email:        "alice@tsinghua.edu.cn",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.CreatePending(ctx, pending); err != nil {
		t.Fatalf("create pending: %v", err)
	}

	inUse, err := store.UsernameInUse(ctx, "alice")
	if err != nil || !inUse {
		t.Fatalf("expected pending username to count as in use")
	}

	if err := store.PromotePending(ctx, "alice"); err != nil {
		t.Fatalf("promote: %v", err)
	}

	account, err := store.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.Role != model.RoleUser || account.Email != pending.Email {
		t.Fatalf("unexpected promoted account: %+v", account)
	}

	if _, err := store.GetPending(ctx, "alice"); err != ErrNotFound {
		t.Fatalf("expected pending row to be gone, got %v", err)
	}
	if err := store.PromotePending(ctx, "alice"); err != ErrNotFound {
		t.Fatalf("expected second promote to fail, got %v", err)
	}
}

func TestTagIncrementsAggregate(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.CreateStats(ctx, "alice"); err != nil {
		t.Fatalf("create stats: %v", err)
	}
	if err := store.IncrementTags(ctx, "alice", []string{"a", "b", "a"}); err != nil {
		t.Fatalf("increment tags: %v", err)
	}

	stats, err := store.GetStats(ctx, "alice")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(stats.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", stats.Tags)
	}
	if stats.Tags[0].Name != "a" || stats.Tags[0].Count != 2 {
		t.Fatalf("expected a:2, got %+v", stats.Tags[0])
	}
	if stats.Tags[1].Name != "b" || stats.Tags[1].Count != 1 {
		t.Fatalf("expected b:1, got %+v", stats.Tags[1])
	}
}

func TestCreateStatsResetsExisting(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.CreateStats(ctx, "alice"); err != nil {
		t.Fatalf("create stats: %v", err)
	}
	if err := store.IncrementConversation(ctx, "alice"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.IncrementTags(ctx, "alice", []string{"algebra"}); err != nil {
		t.Fatalf("increment tags: %v", err)
	}

	// A leftover row from a pruned registration must not block the next
	// registration; creating again starts from zero.
	if err := store.CreateStats(ctx, "alice"); err != nil {
		t.Fatalf("re-create stats: %v", err)
	}
	stats, err := store.GetStats(ctx, "alice")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Conversation != 0 || len(stats.Tags) != 0 {
		t.Fatalf("expected reset stats, got %+v", stats)
	}
}

func TestIncrementWithoutStatsIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.IncrementTags(ctx, "ghost", []string{"a"}); err != nil {
		t.Fatalf("increment tags: %v", err)
	}
	if err := store.IncrementConversation(ctx, "ghost"); err != nil {
		t.Fatalf("increment conversation: %v", err)
	}
	if _, err := store.GetStats(ctx, "ghost"); err != ErrNotFound {
		t.Fatalf("expected no stats record, got %v", err)
	}
}

func TestDeleteAccountCascadesStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	account := model.Account{Username: "bob", Email: "bob@example.com", Role: model.RoleUser, CreatedAt: time.Now().UTC()}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := store.CreateStats(ctx, "bob"); err != nil {
		t.Fatalf("create stats: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := store.IncrementConversation(ctx, "bob"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	deleted, err := store.DeleteAccount(ctx, "bob")
	if err != nil || !deleted {
		t.Fatalf("delete account: deleted=%v err=%v", deleted, err)
	}
	if _, err := store.GetStats(ctx, "bob"); err != ErrNotFound {
		t.Fatalf("expected stats to cascade, got %v", err)
	}
}

func TestRenameCascadesStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	account := model.Account{Username: "carol", Email: "carol@example.com", Role: model.RoleUser, CreatedAt: time.Now().UTC()}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := store.CreateStats(ctx, "carol"); err != nil {
		t.Fatalf("create stats: %v", err)
	}
	if err := store.IncrementTags(ctx, "carol", []string{"calculus"}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	if err := store.UpdateUsername(ctx, "carol", "caroline"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	stats, err := store.GetStats(ctx, "caroline")
	if err != nil {
		t.Fatalf("expected stats to follow rename: %v", err)
	}
	if len(stats.Tags) != 1 || stats.Tags[0].Name != "calculus" {
		t.Fatalf("unexpected stats after rename: %+v", stats)
	}
	if _, err := store.GetStats(ctx, "carol"); err != ErrNotFound {
		t.Fatalf("expected old stats row to be gone, got %v", err)
	}
}

func TestClearAllStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	for _, username := range []string{"u1", "u2"} {
		if err := store.CreateStats(ctx, username); err != nil {
			t.Fatalf("create stats: %v", err)
		}
		if err := store.IncrementConversation(ctx, username); err != nil {
			t.Fatalf("increment: %v", err)
		}
		if err := store.IncrementTags(ctx, username, []string{"x"}); err != nil {
			t.Fatalf("increment tags: %v", err)
		}
	}

	if err := store.ClearAllStats(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, username := range []string{"u1", "u2"} {
		stats, err := store.GetStats(ctx, username)
		if err != nil {
			t.Fatalf("get stats: %v", err)
		}
		if stats.Conversation != 0 || len(stats.Tags) != 0 {
			t.Fatalf("expected cleared stats, got %+v", stats)
		}
	}
}
