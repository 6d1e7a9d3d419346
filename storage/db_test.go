package storage

import (
	"errors"
	"testing"
)

func TestMemDBGetMissing(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	if _, err := db.Get([]byte("meta/head")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.Put([]byte("meta/head"), []byte{0x01}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get([]byte("meta/head"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0] != 0x01 {
		t.Fatalf("unexpected value %x", got)
	}
}

func TestLevelDBGetMissing(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Get([]byte("meta/head")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRejectsEmptyKey(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	if err := db.Put(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
