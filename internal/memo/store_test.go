package memo

import (
	"path/filepath"
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("sig", "4", "grid")
	b := Key("sig", "4", "grid")
	if a != b {
		t.Fatal("same parts must produce the same key")
	}
	if a == Key("sig", "4", "melody") {
		t.Fatal("different parts must produce different keys")
	}
	// Concatenation across part boundaries must not collide.
	if Key("ab", "c") == Key("a", "bc") {
		t.Fatal("part boundaries must be preserved")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "memo.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	key := Key("corpus-sig", "8")
	ok, err := store.Exists(key)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("fresh store must miss")
	}

	if err := store.Write(key, []byte(`{"4/4":6,"3/4":3}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err = store.Exists(key)
	if err != nil || !ok {
		t.Fatalf("exists after write: ok=%v err=%v", ok, err)
	}
	got, err := store.Read(key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"4/4":6,"3/4":3}` {
		t.Fatalf("read back %q", got)
	}
}

func TestWriteOverwrites(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "memo.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("sig")
	if err := store.Write(key, []byte(`broken`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Write(key, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Read(key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("read back %q", got)
	}
	n, err := store.Len()
	if err != nil || n != 1 {
		t.Fatalf("len = %d err=%v, want 1", n, err)
	}
}

func TestFlush(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "memo.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = store.Write(Key("a"), []byte(`1`))
	_ = store.Write(Key("b"), []byte(`2`))
	if err := store.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	ok, err := store.Exists(Key("a"))
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("flush must drop entries")
	}
}

func TestNoneProvider(t *testing.T) {
	var p None
	ok, err := p.Exists("k")
	if err != nil || ok {
		t.Fatalf("None.Exists = %v, %v", ok, err)
	}
	if err := p.Write("k", []byte("v")); err != nil {
		t.Fatalf("None.Write: %v", err)
	}
	if _, err := p.Read("k"); err == nil {
		t.Fatal("None.Read must fail")
	}
}
