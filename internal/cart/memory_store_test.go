package cart

import (
	"context"
	"testing"
)

func TestMemoryStoreSessionsAreIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := store.Session("a")

	if data, err := a.Load(ctx); err != nil || data != nil {
		t.Fatalf("absent session should load nil, got %v %v", data, err)
	}
	blob := []byte(`{"version":1,"items":[]}`)
	if err := a.Save(ctx, blob); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	blob[0] = 'X'
	data, _ := a.Load(ctx)
	if data[0] != '{' {
		t.Fatalf("store should keep its own copy")
	}
	if data, _ := store.Session("b").Load(ctx); data != nil {
		t.Fatalf("other session should be empty")
	}
	if store.Len() != 1 {
		t.Fatalf("len want 1 got %d", store.Len())
	}
	if err := store.Delete(ctx, "a"); err != nil || store.Len() != 0 {
		t.Fatalf("delete should drop the session, len=%d err=%v", store.Len(), err)
	}
}
