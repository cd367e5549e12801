package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestMemDBMissingKeyReadsNil(t *testing.T) {
	db := NewMemDB()
	value, err := db.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != nil {
		t.Fatalf("missing key = %v, want nil", value)
	}
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	original := []byte("value")
	if err := db.Put([]byte("key"), original); err != nil {
		t.Fatalf("put: %v", err)
	}
	original[0] = 'X'

	stored, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(stored, []byte("value")) {
		t.Fatalf("stored = %q, want %q", stored, "value")
	}
	stored[0] = 'Y'
	again, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if !bytes.Equal(again, []byte("value")) {
		t.Fatalf("mutation leaked into store: %q", again)
	}
}

func TestMemDBWriteBatch(t *testing.T) {
	db := NewMemDB()
	entries := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := db.WriteBatch(entries); err != nil {
		t.Fatalf("batch: %v", err)
	}
	for key, want := range entries {
		got, err := db.Get([]byte(key))
		if err != nil {
			t.Fatalf("get %q: %v", key, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%q = %q, want %q", key, got, want)
		}
	}
}

func TestLevelDBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := NewLevelDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Put([]byte("key"), []byte("value")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Fatalf("got %q, want %q", got, "value")
	}

	missing, err := db.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("missing get: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing key = %v, want nil", missing)
	}

	if err := db.WriteBatch(map[string][]byte{"x": []byte("9")}); err != nil {
		t.Fatalf("batch: %v", err)
	}
	got, err = db.Get([]byte("x"))
	if err != nil || !bytes.Equal(got, []byte("9")) {
		t.Fatalf("batched value = %q err=%v", got, err)
	}
}
