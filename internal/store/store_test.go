package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) (*KV, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskflow.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestKVSetGet(t *testing.T) {
	s, _ := openTemp(t)

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := s.Set("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := s.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok %v, err %v", ok, err)
	}
	if string(v) != `{"a":1}` {
		t.Errorf("Get(k) = %s", v)
	}

	if err := s.Set("k", []byte("second")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	v, _, _ = s.Get("k")
	if string(v) != "second" {
		t.Errorf("after overwrite Get(k) = %s", v)
	}

}

func TestKVUpdatedAt(t *testing.T) {
	s, _ := openTemp(t)

	if _, ok, err := s.UpdatedAt("k"); err != nil || ok {
		t.Fatalf("UpdatedAt(missing) = ok %v, err %v", ok, err)
	}
	before := time.Now().UTC().Add(-time.Minute)
	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	at, ok, err := s.UpdatedAt("k")
	if err != nil || !ok {
		t.Fatalf("UpdatedAt(k) = ok %v, err %v", ok, err)
	}
	if at.Before(before) {
		t.Errorf("UpdatedAt = %v, want after %v", at, before)
	}
}

func TestKVReopenKeepsDataAndSchema(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	if err != nil || !ok || string(v) != "v" {
		t.Errorf("after reopen Get(k) = %q, ok %v, err %v", v, ok, err)
	}
}

func TestMemoryFailWrites(t *testing.T) {
	m := NewMemory()
	if err := m.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("quota exceeded")
	m.FailWrites(boom)
	if err := m.Set("k", []byte("w")); !errors.Is(err, boom) {
		t.Errorf("Set err = %v, want %v", err, boom)
	}
	v, _, _ := m.Get("k")
	if string(v) != "v" {
		t.Errorf("failed write changed value to %s", v)
	}

	m.FailWrites(nil)
	if err := m.Set("k", []byte("w")); err != nil {
		t.Errorf("Set after recovery failed: %v", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	m.Set("k", buf)
	buf[0] = 'x'

	v, _, _ := m.Get("k")
	if string(v) != "abc" {
		t.Errorf("stored value aliased caller buffer: %s", v)
	}
	v[0] = 'y'
	v2, _, _ := m.Get("k")
	if string(v2) != "abc" {
		t.Errorf("returned value aliased stored value: %s", v2)
	}
}

func TestMemoryFailReadsAndUpdatedAt(t *testing.T) {
	m := NewMemory()
	if _, ok, _ := m.UpdatedAt("k"); ok {
		t.Error("UpdatedAt reported a key never written")
	}
	before := time.Now().UTC()
	m.Set("k", []byte("v"))
	if at, ok, _ := m.UpdatedAt("k"); !ok || at.Before(before) {
		t.Errorf("UpdatedAt = %v, ok %v, want after %v", at, ok, before)
	}

	boom := errors.New("database is locked")
	m.FailReads(boom)
	if _, _, err := m.Get("k"); !errors.Is(err, boom) {
		t.Errorf("Get err = %v, want %v", err, boom)
	}
	m.FailReads(nil)
	if v, ok, err := m.Get("k"); err != nil || !ok || string(v) != "v" {
		t.Errorf("Get after recovery = %q, ok %v, err %v", v, ok, err)
	}
}
