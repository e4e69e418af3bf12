package versions

import (
	"sync"
	"time"
)

// Store holds the current version list for readers that outlive a single build,
// such as the HTTP server. Reloads replace the list wholesale.
type Store struct {
	mu       sync.RWMutex
	path     string
	list     List
	loadedAt time.Time
}

func NewStore(path string, initial List) *Store {
	return &Store{
		path:     path,
		list:     initial.Clone(),
		loadedAt: time.Now(),
	}
}

// Get returns a copy of the current list.
func (s *Store) Get() List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Clone()
}

// Set replaces the current list.
func (s *Store) Set(list List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list.Clone()
	s.loadedAt = time.Now()
}

// Reload re-reads the data file. On error the previous list is kept.
func (s *Store) Reload() (List, error) {
	list, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	s.Set(list)
	return list.Clone(), nil
}

// Path returns the data file backing the store.
func (s *Store) Path() string {
	return s.path
}

// LoadedAt returns when the current list was installed.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
