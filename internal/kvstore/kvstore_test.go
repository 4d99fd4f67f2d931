package kvstore_test

import (
	"testing"

	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/testutil"
)

func TestGetSetRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := kvstore.New(db)

	// Missing key reads as absent, not as an error.
	_, ok, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get on missing key returned error: %v", err)
	}
	if ok {
		t.Fatal("Get on missing key reported presence")
	}

	if err := s.Set("k", `{"a":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := s.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after Set: value missing (ok=%v, err=%v)", ok, err)
	}
	if v != `{"a":1}` {
		t.Errorf("Get returned %q, want %q", v, `{"a":1}`)
	}

	// Set replaces the previous value.
	if err := s.Set("k", `{"a":2}`); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	v, _, _ = s.Get("k")
	if v != `{"a":2}` {
		t.Errorf("Get after overwrite returned %q, want %q", v, `{"a":2}`)
	}

	if err := s.Remove("k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Has("k") {
		t.Error("Has reported presence after Remove")
	}

	// Removing an absent key is not an error.
	if err := s.Remove("k"); err != nil {
		t.Errorf("Remove on absent key returned error: %v", err)
	}
}

func TestHasTreatsErrorAsAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := kvstore.New(db)
	db.Close() // Force read failures.

	if s.Has("anything") {
		t.Error("Has returned true on a closed database")
	}
}
