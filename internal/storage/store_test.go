package storage

import (
	"reflect"
	"testing"
	"time"
)

func TestInMemoryStore_GetPut(t *testing.T) {
	store := NewInMemoryStore()

	store.Put("key1", []byte("value1"))

	value, ok := store.Get("key1")
	if !ok {
		t.Fatal("Expected key1 to be present")
	}
	if string(value) != "value1" {
		t.Errorf("Expected 'value1', got '%s'", string(value))
	}
}

func TestInMemoryStore_GetNotFound(t *testing.T) {
	store := NewInMemoryStore()
	if _, ok := store.Get("nonexistent"); ok {
		t.Error("Expected miss for non-existent key")
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	store.Put("key1", []byte("value1"))

	if !store.Delete("key1") {
		t.Error("Expected Delete to report key1 present")
	}
	if store.Delete("key1") {
		t.Error("Expected second Delete to report key1 absent")
	}
	if _, ok := store.Get("key1"); ok {
		t.Error("Expected key1 to be gone")
	}
}

func TestInMemoryStore_CopyIsolation(t *testing.T) {
	store := NewInMemoryStore()

	original := []byte("value1")
	store.Put("key1", original)
	original[0] = 'X'

	got, _ := store.Get("key1")
	if string(got) != "value1" {
		t.Errorf("Store aliased caller's slice: got '%s'", string(got))
	}

	got[0] = 'Y'
	again, _ := store.Get("key1")
	if string(again) != "value1" {
		t.Errorf("Store returned its internal slice: got '%s'", string(again))
	}
}

func TestInMemoryStore_TTL(t *testing.T) {
	store := NewInMemoryStore()

	store.PutTTL("short", []byte("v"), time.Millisecond)
	store.PutTTL("long", []byte("v"), time.Hour)
	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get("short"); ok {
		t.Error("Expected expired key to be a miss")
	}
	if _, ok := store.Get("long"); !ok {
		t.Error("Expected unexpired key to be present")
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 live key, got %d", store.Len())
	}
	if !reflect.DeepEqual(store.Keys(), []string{"long"}) {
		t.Errorf("Expected only 'long' in Keys(), got %v", store.Keys())
	}
}

func TestInMemoryStore_TakeRestore(t *testing.T) {
	src := NewInMemoryStore()
	dst := NewInMemoryStore()

	src.PutTTL("key1", []byte("value1"), time.Hour)

	e, ok := src.Take("key1")
	if !ok {
		t.Fatal("Expected Take to find key1")
	}
	if src.Len() != 0 {
		t.Errorf("Expected source to be empty after Take, has %d", src.Len())
	}
	if e.ExpiresAt == nil {
		t.Error("Expected Take to keep the expiry")
	}

	dst.Restore("key1", e)
	got, ok := dst.Get("key1")
	if !ok || string(got) != "value1" {
		t.Errorf("Expected restored value1, got %q (ok=%v)", got, ok)
	}

	if _, ok := src.Take("missing"); ok {
		t.Error("Expected Take of a missing key to fail")
	}
}

func TestInMemoryStore_KeysSorted(t *testing.T) {
	store := NewInMemoryStore()
	for _, k := range []string{"c", "a", "b"} {
		store.Put(k, []byte(k))
	}

	want := []string{"a", "b", "c"}
	if got := store.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
