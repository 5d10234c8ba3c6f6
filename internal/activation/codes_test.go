package activation

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewCodeShape(t *testing.T) {
	code, err := NewCode("alice", 72*time.Hour)
	if err != nil {
		t.Fatalf("new code: %v", err)
	}
	if len(code.Code) != CodeLength {
		t.Fatalf("expected %d-char code, got %d", CodeLength, len(code.Code))
	}
	for _, r := range code.Code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("unexpected character %q in code", r)
		}
	}
	if !code.ExpiresAt.After(code.CreatedAt) {
		t.Fatalf("expected expiry after creation")
	}
	if code.Expired(time.Now().UTC()) {
		t.Fatalf("fresh code should not be expired")
	}
	if !code.Expired(code.ExpiresAt.Add(time.Second)) {
		t.Fatalf("code past expires_at should be expired")
	}
}

func TestCodesAreUnique(t *testing.T) {
	a, err := NewCode("alice", time.Hour)
	if err != nil {
		t.Fatalf("new code: %v", err)
	}
	b, err := NewCode("alice", time.Hour)
	if err != nil {
		t.Fatalf("new code: %v", err)
	}
	if a.Code == b.Code {
		t.Fatalf("expected distinct codes")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	code, err := NewCode("alice", time.Hour)
	if err != nil {
		t.Fatalf("new code: %v", err)
	}
	if err := store.Put(ctx, code); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != code.Code {
		t.Fatalf("expected stored code back")
	}

	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "alice"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
