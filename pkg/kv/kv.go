// Package kv provides the small key-value store the studio keeps its
// durable records in: generation task records and audio-library metadata.
// Keys are hierarchical paths represented as string slices (e.g.,
// ["task", "<id>"]) encoded with a configurable separator (default ':').
//
// Two implementations are provided: a BadgerDB-backed store for production
// and an in-memory store for tests. Both guarantee that Update is atomic
// per key, which is what the task lifecycle relies on for its exactly-once
// state transitions.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path represented as a slice of string segments.
// Segments must not contain the configured separator character.
type Key []string

// String returns the key as a human-readable string using ':' as separator.
// For display/debug only; storage encoding goes through Options.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// UpdateFunc transforms the current value of a key into its next value.
// prev is nil when the key does not exist yet. Returning an error aborts
// the update and propagates the error unchanged.
type UpdateFunc func(prev []byte) ([]byte, error)

// Store is the interface for a key-value store with path-based keys.
// Implementations must be safe for concurrent use; operations on different
// keys must not serialize against each other beyond what the backend
// requires.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Update atomically applies fn to the current value of key and stores
	// the result. No concurrent Update of the same key observes an
	// intermediate state.
	Update(ctx context.Context, key Key, fn UpdateFunc) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given prefix,
	// in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

// DefaultSeparator is the default separator byte used to encode key segments.
const DefaultSeparator byte = ':'

// Options configures store behavior.
type Options struct {
	// Separator is the byte used to join key segments when encoding to
	// storage. Default is ':' if zero.
	Separator byte
}

func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// encode converts a Key to its byte representation using the separator.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	n := 0
	for i, seg := range k {
		if i > 0 {
			n++
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = s
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decode converts a byte representation back to a Key using the separator.
func (o *Options) decode(b []byte) Key {
	s := o.sep()
	var k Key
	start := 0
	for i, c := range b {
		if c == s {
			k = append(k, string(b[start:i]))
			start = i + 1
		}
	}
	return append(k, string(b[start:]))
}
