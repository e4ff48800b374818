package kv

import (
	"bytes"
	"context"
	"iter"
	"sort"
	"sync"
)

// Memory is an in-memory Store backed by a map. It is safe for concurrent
// use and intended primarily for tests; the server also uses it when no
// data directory is configured.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
	opts *Options
}

// NewMemory creates a new in-memory Store. Pass nil for default options.
func NewMemory(opts *Options) *Memory {
	return &Memory{
		data: make(map[string][]byte),
		opts: opts,
	}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	k := string(m.opts.encode(key))
	m.mu.Lock()
	v, ok := m.data[k]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	k := string(m.opts.encode(key))
	cp := bytes.Clone(value)
	m.mu.Lock()
	m.data[k] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Update(_ context.Context, key Key, fn UpdateFunc) error {
	k := string(m.opts.encode(key))
	m.mu.Lock()
	defer m.mu.Unlock()

	var prev []byte
	if v, ok := m.data[k]; ok {
		prev = bytes.Clone(v)
	}
	next, err := fn(prev)
	if err != nil {
		return err
	}
	m.data[k] = bytes.Clone(next)
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	k := string(m.opts.encode(key))
	m.mu.Lock()
	delete(m.data, k)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := m.opts.encode(prefix)
	// Append separator so "a:b" prefix doesn't match "a:bc".
	var prefixBytes []byte
	if len(p) > 0 {
		prefixBytes = append(p, m.opts.sep())
	}

	// Snapshot matching entries under the lock.
	m.mu.Lock()
	var matches []Entry
	for k, v := range m.data {
		if len(prefixBytes) == 0 || bytes.HasPrefix([]byte(k), prefixBytes) {
			matches = append(matches, Entry{
				Key:   m.opts.decode([]byte(k)),
				Value: bytes.Clone(v),
			})
		}
	}
	m.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool {
		return string(m.opts.encode(matches[i].Key)) < string(m.opts.encode(matches[j].Key))
	})

	return func(yield func(Entry, error) bool) {
		for _, e := range matches {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	return nil
}
