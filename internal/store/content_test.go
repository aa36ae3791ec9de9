package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPutIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	data := []byte("package main\n")
	h1, err := s.Put(data)
	if err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	h2, err := s.Put(data)
	if err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hashes differ: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64-char hex hash, got %d chars", len(h1))
	}
	got, err := s.Get(h1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("roundtrip mismatch: %q", got)
	}
}

func TestPutNeverOverwrites(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	hash, err := s.Put([]byte("original"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	path := filepath.Join(root, "objects", hash[:2], hash)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("object missing on disk: %v", err)
	}
	before := info.ModTime()
	if _, err := s.Put([]byte("original")); err != nil {
		t.Fatalf("repeat put failed: %v", err)
	}
	info, err = os.Stat(path)
	if err != nil {
		t.Fatalf("object missing after repeat put: %v", err)
	}
	if !info.ModTime().Equal(before) {
		t.Fatalf("object was rewritten")
	}
}

func TestGetUnknownHash(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = s.Get("deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = s.Get("not-a-hash")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed hash, got %v", err)
	}
}

func TestFingerprintStability(t *testing.T) {
	a := []FileRef{
		{Path: "src/main.py", Hash: "aa"},
		{Path: "README.md", Hash: "bb"},
	}
	b := []FileRef{
		{Path: "README.md", Hash: "bb"},
		{Path: "src/main.py", Hash: "aa"},
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("fingerprint should not depend on input order")
	}
	c := append([]FileRef(nil), a...)
	c[0].Hash = "cc"
	if Fingerprint(a) == Fingerprint(c) {
		t.Fatalf("fingerprint should change when a content hash changes")
	}
	if len(Fingerprint(a)) != 64 {
		t.Fatalf("fingerprint must be 64 hex chars")
	}
	if Fingerprint(nil) != Fingerprint([]FileRef{}) {
		t.Fatalf("empty fingerprints should match")
	}
}

func TestFingerprintDistinguishesPathSwap(t *testing.T) {
	a := []FileRef{{Path: "a", Hash: "h1"}, {Path: "b", Hash: "h2"}}
	b := []FileRef{{Path: "a", Hash: "h2"}, {Path: "b", Hash: "h1"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("swapping hashes between paths must change the fingerprint")
	}
}
