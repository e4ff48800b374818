package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lyrebird-studio/lyrebird/pkg/kv"
)

var ErrNotFound = errors.New("task not found")

// Store persists tasks. Update must apply fn atomically with respect
// to other updates of the same task.
type Store interface {
	Create(ctx context.Context) (*Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, id string, fn func(*Task) error) (*Task, error)
}

// KVStore keeps tasks in a kv.Store, msgpack-encoded under a fixed
// key prefix. It works over both the in-memory and badger backends.
type KVStore struct {
	kv kv.Store
}

func NewKVStore(s kv.Store) *KVStore {
	return &KVStore{kv: s}
}

func taskKey(id string) kv.Key { return kv.Key{"task", id} }

func (s *KVStore) Create(ctx context.Context) (*Task, error) {
	t := &Task{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	b, err := msgpack.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	if err := s.kv.Set(ctx, taskKey(t.ID), b); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *KVStore) Get(ctx context.Context, id string) (*Task, error) {
	b, err := s.kv.Get(ctx, taskKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	var t Task
	if err := msgpack.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &t, nil
}

func (s *KVStore) Update(ctx context.Context, id string, fn func(*Task) error) (*Task, error) {
	var out *Task
	err := s.kv.Update(ctx, taskKey(id), func(prev []byte) ([]byte, error) {
		if prev == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var t Task
		if err := msgpack.Unmarshal(prev, &t); err != nil {
			return nil, fmt.Errorf("decode task %s: %w", id, err)
		}
		if err := fn(&t); err != nil {
			return nil, err
		}
		out = &t
		return msgpack.Marshal(&t)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
