package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback Store. It is single-instance
// only: in a multi-instance deployment each process sees its own session
// state. Reads evict expired entries lazily; the optional janitor only
// reclaims memory earlier.
type MemoryStore struct {
	mu        sync.RWMutex
	values    map[string]memoryValue
	sets      map[string]*memorySet
	now       func() time.Time
	janitor   *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

type memoryValue struct {
	data     []byte
	deadline time.Time
}

type memorySet struct {
	members  []string // insertion order
	deadline time.Time
}

// NewMemoryStore creates an in-process store. A positive cleanupInterval
// starts a background sweep; zero disables it.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		values: make(map[string]memoryValue),
		sets:   make(map[string]*memorySet),
		now:    time.Now,
		done:   make(chan struct{}),
	}

	if cleanupInterval > 0 {
		s.janitor = time.NewTicker(cleanupInterval)
		go s.sweepLoop()
	}

	return s
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = memoryValue{data: data, deadline: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}

	if !s.now().Before(v.deadline) {
		s.mu.Lock()
		delete(s.values, key)
		s.mu.Unlock()
		return nil, ErrKeyNotFound
	}

	data := make([]byte, len(v.data))
	copy(data, v.data)
	return data, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return false, nil
	}
	delete(s.values, key)

	// An entry past its deadline counts as already gone.
	return s.now().Before(v.deadline), nil
}

func (s *MemoryStore) AddToSet(ctx context.Context, setKey, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.liveSet(setKey)
	if set == nil {
		set = &memorySet{}
		s.sets[setKey] = set
	}

	if !slices.Contains(set.members, member) {
		set.members = append(set.members, member)
	}
	return nil
}

func (s *MemoryStore) RemoveFromSet(ctx context.Context, setKey, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.liveSet(setKey)
	if set == nil {
		return nil
	}

	set.members = slices.DeleteFunc(set.members, func(m string) bool { return m == member })
	if len(set.members) == 0 {
		delete(s.sets, setKey)
	}
	return nil
}

func (s *MemoryStore) Members(ctx context.Context, setKey string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.liveSet(setKey)
	if set == nil {
		return nil, nil
	}

	return slices.Clone(set.members), nil
}

func (s *MemoryStore) SetExpiry(ctx context.Context, setKey string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.liveSet(setKey)
	if set == nil {
		return nil
	}
	set.deadline = s.now().Add(ttl)
	return nil
}

// liveSet returns the set at setKey, dropping it first when its deadline
// has passed. Callers must hold the write lock.
func (s *MemoryStore) liveSet(setKey string) *memorySet {
	set, ok := s.sets[setKey]
	if !ok {
		return nil
	}
	if !set.deadline.IsZero() && !s.now().Before(set.deadline) {
		delete(s.sets, setKey)
		return nil
	}
	return set
}

// Close stops the janitor. The store remains usable afterwards.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		if s.janitor != nil {
			s.janitor.Stop()
		}
		close(s.done)
	})
	return nil
}

func (s *MemoryStore) sweepLoop() {
	for {
		select {
		case <-s.janitor.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, v := range s.values {
		if !now.Before(v.deadline) {
			delete(s.values, key)
		}
	}
	for key, set := range s.sets {
		if !set.deadline.IsZero() && !now.Before(set.deadline) {
			delete(s.sets, key)
		}
	}
}
