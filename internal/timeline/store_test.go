package timeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pders01/feedcache/internal/entity"
)

func setupTestStore(t *testing.T) *userStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.db")
	store, err := openUserStore(path, 1*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUserStore_PutAndGetStatus(t *testing.T) {
	store := setupTestStore(t)

	st := &entity.Status{
		ID:        "s1",
		Account:   entity.AccountSummary{ID: "a1", Username: "alice"},
		Content:   "hello world",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := store.PutStatuses([]*entity.Status{st}); err != nil {
		t.Fatalf("failed to put status: %v", err)
	}

	got, err := store.Status("s1")
	if err != nil {
		t.Fatalf("failed to get status: %v", err)
	}
	if got == nil {
		t.Fatal("expected status, got nil")
	}
	if got.ID != st.ID {
		t.Errorf("expected ID %s, got %s", st.ID, got.ID)
	}
	if got.Content != st.Content {
		t.Errorf("expected Content %q, got %q", st.Content, got.Content)
	}
	if got.Account.Username != "alice" {
		t.Errorf("expected author alice, got %s", got.Account.Username)
	}
}

func TestUserStore_GetStatus_Miss(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.Status("missing")
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing id, got %+v", got)
	}
}

func TestUserStore_BatchGet(t *testing.T) {
	store := setupTestStore(t)

	statuses := []*entity.Status{
		{ID: "s1", Content: "one"},
		{ID: "s2", Content: "two"},
		{ID: "s3", Content: "three"},
	}
	if err := store.PutStatuses(statuses); err != nil {
		t.Fatalf("failed to put statuses: %v", err)
	}

	got, err := store.Statuses([]string{"s3", "missing", "s1"})
	if err != nil {
		t.Fatalf("failed to batch get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	// Misses are skipped, hit order follows the requested order.
	if got[0].ID != "s3" || got[1].ID != "s1" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestUserStore_PutOverwrites(t *testing.T) {
	store := setupTestStore(t)

	if err := store.PutStatuses([]*entity.Status{{ID: "s1", Content: "first"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.PutStatuses([]*entity.Status{{ID: "s1", Content: "second"}}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Status("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "second" {
		t.Errorf("expected latest content, got %q", got.Content)
	}
}

func TestUserStore_Empty(t *testing.T) {
	store := setupTestStore(t)

	if err := store.PutStatuses([]*entity.Status{{ID: "s1"}, {ID: "s2"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Empty(); err != nil {
		t.Fatalf("failed to empty store: %v", err)
	}

	got, err := store.Status("s1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected empty store, got %+v", got)
	}

	// The store remains usable after emptying.
	if err := store.PutStatuses([]*entity.Status{{ID: "s3"}}); err != nil {
		t.Fatalf("store unusable after empty: %v", err)
	}
}
