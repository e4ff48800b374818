package kv_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lyrebird-studio/lyrebird/pkg/kv"
)

// newTestStore creates a Store for testing. Tests use the Memory
// implementation; the same logic applies to the badger backend.
func newTestStore(t *testing.T, opts *kv.Options) kv.Store {
	t.Helper()
	s := kv.NewMemory(opts)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	key := kv.Key{"task", "abc123"}
	val := []byte("record")

	if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, key, val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("Get = %q, want %q", got, val)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete idempotence: %v", err)
	}
}

func TestUpdateAtomicPerKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	key := kv.Key{"task", "counter"}

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, key, func(prev []byte) ([]byte, error) {
				return append(prev, 'x'), nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != n {
		t.Fatalf("lost updates: len = %d, want %d", len(got), n)
	}
}

func TestUpdateErrorAborts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	key := kv.Key{"task", "t1"}

	if err := s.Set(ctx, key, []byte("before")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	boom := errors.New("boom")
	err := s.Update(ctx, key, func([]byte) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil || string(got) != "before" {
		t.Fatalf("value changed after failed update: %q, %v", got, err)
	}
}

func TestListPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	pairs := map[string]kv.Key{
		"a": {"task", "a"},
		"b": {"task", "b"},
		"x": {"audio", "x"},
	}
	for v, k := range pairs {
		if err := s.Set(ctx, k, []byte(v)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	var got []string
	for e, err := range s.List(ctx, kv.Key{"task"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, string(e.Value))
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List = %v, want [a b]", got)
	}
}
