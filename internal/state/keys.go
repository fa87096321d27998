package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"chordsheet/internal/atomicfile"
	"chordsheet/internal/transpose"
)

// Store remembers the key each song should be shown in.
type Store struct {
	path string

	mu   sync.Mutex
	keys map[string]string
}

// NewStore initializes state from path if present.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		keys: make(map[string]string),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}

	if err := json.Unmarshal(b, &s.keys); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if s.keys == nil {
		s.keys = make(map[string]string)
	}
	return s, nil
}

// Key returns the preferred key for a song.
func (s *Store) Key(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[name]
	return k, ok
}

// SetKey validates a key name, records it for the song and persists
// state atomically.
func (s *Store) SetKey(name, key string) error {
	k, err := transpose.ParseKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[name] == k.String() {
		return nil
	}
	s.keys[name] = k.String()
	return s.saveLocked()
}

// Clear forgets a song's preferred key.
func (s *Store) Clear(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[name]; !ok {
		return nil
	}
	delete(s.keys, name)
	return s.saveLocked()
}

// All returns a copy of every stored preference.
func (s *Store) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.keys))
	for k, v := range s.keys {
		out[k] = v
	}
	return out
}

func (s *Store) saveLocked() error {
	payload, err := json.MarshalIndent(s.keys, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := atomicfile.WriteFile(s.path, payload); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
