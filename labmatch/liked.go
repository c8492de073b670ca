package labmatch

import "sync"

// LikedStore is the in-memory ordered list of liked professors, keyed by id.
// Every mutation swaps in a new slice, so lists handed out by List are never
// modified afterwards. Nothing is persisted.
type LikedStore struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	items    []Professor
	nextID   int
	subs     map[int]func([]Professor)
}

// NewLikedStore constructs an empty store.
func NewLikedStore() *LikedStore {
	return &LikedStore{subs: make(map[int]func([]Professor))}
}

// Add appends p unless a professor with the same id is already present.
// It reports whether the list changed.
func (s *LikedStore) Add(p Professor) bool {
	s.mu.Lock()
	for _, it := range s.items {
		if it.ID == p.ID {
			s.mu.Unlock()
			return false
		}
	}
	next := make([]Professor, len(s.items), len(s.items)+1)
	copy(next, s.items)
	s.items = append(next, p)
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove drops the professor with the given id. Unknown ids are a no-op.
func (s *LikedStore) Remove(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	next := make([]Professor, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	s.items = next
	s.mu.Unlock()
	s.notify()
	return true
}

// Clear empties the list.
func (s *LikedStore) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.notify()
}

// List returns the current list in insertion order.
func (s *LikedStore) List() []Professor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Len returns the number of liked professors.
func (s *LikedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Contains reports whether id is liked.
func (s *LikedStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Subscribe registers fn to receive the list after every change and returns
// a function that removes the subscription. Lists arrive in order; fn must not
// modify the store.
func (s *LikedStore) Subscribe(fn func([]Professor)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *LikedStore) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.RLock()
	items := s.items
	fns := make([]func([]Professor), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(items)
	}
}
