package testkit

import (
	"testing"

	"id5multiplexing/interfaces"
	"id5multiplexing/storage"
)

// NewStorageApi constructs a fresh, empty StorageApi for a test.
// The returned storage MUST be isolated from other tests.
type NewStorageApi func(t *testing.T) interfaces.StorageApi

// RunStorageApiConformance checks the behavior every StorageApi backend must share.
func RunStorageApiConformance(t *testing.T, newStorage NewStorageApi) {
	t.Helper()

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		s := newStorage(t)
		if err := s.SetItem("k", "v"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		got, err := s.GetItem("k")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if got != "v" {
			t.Fatalf("GetItem = %q, want %q", got, "v")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStorage(t)
		if err := s.SetItem("k", "v1"); err != nil {
			t.Fatalf("SetItem(1) failed: %v", err)
		}
		if err := s.SetItem("k", "v2"); err != nil {
			t.Fatalf("SetItem(2) failed: %v", err)
		}
		got, err := s.GetItem("k")
		if err != nil || got != "v2" {
			t.Fatalf("GetItem = %q, %v, want %q", got, err, "v2")
		}
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.GetItem("missing")
		if !storage.IsNotFound(err) {
			t.Fatalf("GetItem(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := newStorage(t)
		if err := s.SetItem("k", "v"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		if err := s.RemoveItem("k"); err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		if _, err := s.GetItem("k"); !storage.IsNotFound(err) {
			t.Fatalf("GetItem after remove error = %v, want ErrNotFound", err)
		}
		if err := s.RemoveItem("k"); err != nil {
			t.Fatalf("RemoveItem of absent key failed: %v", err)
		}
	})

	t.Run("EmptyValue", func(t *testing.T) {
		s := newStorage(t)
		if err := s.SetItem("k", ""); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		got, err := s.GetItem("k")
		if err != nil || got != "" {
			t.Fatalf("GetItem = %q, %v, want empty value", got, err)
		}
	})
}
