package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/trailmind/trailmind/pkg/kv"
)

// stores returns one instance of each implementation for conformance
// testing.
func stores(t *testing.T) map[string]kv.Store {
	t.Helper()
	b, err := kv.NewBadger(kv.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]kv.Store{
		"memory": kv.NewMemory(),
		"badger": b,
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.Get(ctx, "missing"); !errors.Is(err, kv.ErrNotFound) {
				t.Errorf("Get(missing) = %v, want ErrNotFound", err)
			}

			if err := store.Set(ctx, "conv:u1:001", []byte("hello")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := store.Get(ctx, "conv:u1:001")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "hello" {
				t.Errorf("Get = %q, want hello", got)
			}

			if err := store.Set(ctx, "conv:u1:001", []byte("world")); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, _ = store.Get(ctx, "conv:u1:001")
			if string(got) != "world" {
				t.Errorf("Get after overwrite = %q, want world", got)
			}

			if err := store.Delete(ctx, "conv:u1:001"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, "conv:u1:001"); !errors.Is(err, kv.ErrNotFound) {
				t.Errorf("Get after delete = %v, want ErrNotFound", err)
			}

			if err := store.Delete(ctx, "never-existed"); err != nil {
				t.Errorf("Delete(absent) = %v, want nil", err)
			}
		})
	}
}

func TestStoreListByPrefix(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seed := map[string]string{
				"conv:u1:001": "a",
				"conv:u1:002": "b",
				"conv:u2:001": "c",
				"prefs:u1":    "d",
			}
			for k, v := range seed {
				if err := store.Set(ctx, k, []byte(v)); err != nil {
					t.Fatalf("Set(%s): %v", k, err)
				}
			}

			var keys []string
			for entry, err := range store.List(ctx, "conv:u1:") {
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				keys = append(keys, entry.Key)
			}

			want := []string{"conv:u1:001", "conv:u1:002"}
			if len(keys) != len(want) {
				t.Fatalf("keys = %v, want %v", keys, want)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Errorf("keys[%d] = %s, want %s", i, keys[i], want[i])
				}
			}
		})
	}
}

func TestStoreListEarlyStop(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, k := range []string{"x:1", "x:2", "x:3"} {
				store.Set(ctx, k, []byte("v"))
			}

			count := 0
			for range store.List(ctx, "x:") {
				count++
				if count == 2 {
					break
				}
			}
			if count != 2 {
				t.Errorf("count = %d, want 2", count)
			}
		})
	}
}

func TestMemoryValueIsolation(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	val := []byte("original")
	store.Set(ctx, "k", val)
	val[0] = 'X'

	got, _ := store.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value mutated: %q", got)
	}

	got[0] = 'Y'
	again, _ := store.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("returned value aliased storage: %q", again)
	}
}

func TestBadgerOnDiskRequiresDir(t *testing.T) {
	if _, err := kv.NewBadger(kv.BadgerOptions{}); err == nil {
		t.Error("expected error without Dir")
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	if err := store.Set(ctx, "conv:u1:001", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "conv:u1:001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get = %q, want persisted", got)
	}
}
