// Package handoff passes a generated result to the view that displays it.
// A result is written once and consumed once.
package handoff

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/storage"
)

// ErrEmpty is returned by Take when nothing is waiting for kind.
var ErrEmpty = errors.New("handoff: nothing pending")

// KV is the slice of storage.Store the handoff needs.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store reads and writes handoff keys.
type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Key returns the store key for kind ("memojo-last-recipe").
func Key(kind content.Kind) string {
	return "memojo-last-" + string(kind)
}

// Put replaces whatever is pending for kind with v.
func (s *Store) Put(kind content.Kind, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s handoff: %w", kind, err)
	}
	if err := s.kv.Set(Key(kind), string(data)); err != nil {
		return fmt.Errorf("storing %s handoff: %w", kind, err)
	}
	return nil
}

// Take decodes the pending result for kind into v and removes it.
func (s *Store) Take(kind content.Kind, v any) error {
	raw, err := s.TakeRaw(kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s handoff: %w", kind, err)
	}
	return nil
}

// TakeRaw returns the pending JSON for kind and removes it.
func (s *Store) TakeRaw(kind content.Kind) (json.RawMessage, error) {
	key := Key(kind)
	raw, err := s.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s handoff: %w", kind, err)
	}
	if err := s.kv.Delete(key); err != nil {
		return nil, fmt.Errorf("consuming %s handoff: %w", kind, err)
	}
	return json.RawMessage(raw), nil
}
