package session

import (
	"testing"

	"github.com/ChamsBouzaiene/sweguard/internal/engine"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	snap := engine.Snapshot{
		Phase:             engine.PhaseModify,
		InstanceID:        "django__django-12325",
		ToolCallsTotal:    12,
		ModificationCount: 2,
		HasRunTests:       true,
		ModifiedFiles:     []string{"django/urls/resolvers.py"},
	}
	if err := store.Save("django__django-12325", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := store.Load("django__django-12325")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("snapshot not found after save")
	}
	if got.Phase != engine.PhaseModify || got.ToolCallsTotal != 12 {
		t.Errorf("loaded snapshot = %+v", got)
	}
	if len(got.ModifiedFiles) != 1 || got.ModifiedFiles[0] != "django/urls/resolvers.py" {
		t.Errorf("modified files = %v", got.ModifiedFiles)
	}
}

func TestLoadMissingIsZero(t *testing.T) {
	store := NewStore(t.TempDir())

	snap, found, err := store.Load("never__stored-1")
	if err != nil {
		t.Fatalf("Load of missing snapshot errored: %v", err)
	}
	if found {
		t.Error("missing snapshot reported as found")
	}
	if snap.ToolCallsTotal != 0 {
		t.Errorf("missing snapshot not zero: %+v", snap)
	}
}

func TestDeleteAndList(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, id := range []string{"a__b-1", "c__d-2"} {
		if err := store.Save(id, engine.Snapshot{InstanceID: id}); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("List = %v", ids)
	}

	if err := store.Delete("a__b-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("a__b-1"); err != nil {
		t.Errorf("double delete should be a no-op: %v", err)
	}
	ids, _ = store.List()
	if len(ids) != 1 || ids[0] != "c__d-2" {
		t.Errorf("List after delete = %v", ids)
	}
}
