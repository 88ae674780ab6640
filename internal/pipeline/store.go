package pipeline

import "sync"

// Store holds named string variables produced during a run. Writes record
// their order so the executor can fall back to the most recent output when
// the expected terminal variables are missing.
type Store struct {
	mu    sync.RWMutex
	vals  map[string]string
	order []string
}

func NewStore() *Store {
	return &Store{vals: make(map[string]string)}
}

// Set writes a variable. Rewriting an existing key moves it to the end of
// the write order.
func (s *Store) Set(key, val string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vals[key]; exists {
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.vals[key] = val
	s.order = append(s.order, key)
}

// Get returns the value for key, or "" when absent.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vals[key]
}

// Lookup returns the value and whether the key has been written.
func (s *Store) Lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vals[key]
	return v, ok
}

// Len returns the number of variables written.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vals)
}

// LastWrite returns the most recently written key and value.
func (s *Store) LastWrite() (key, val string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return "", "", false
	}
	key = s.order[len(s.order)-1]
	return key, s.vals[key], true
}
