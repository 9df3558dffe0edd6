// Package session keeps one canonical record set per dashboard session.
//
// A session's records are only ever replaced wholesale. A failed ingestion
// simply does not call Replace, so the previous set stays available.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/cubo-visits/internal/datanorm"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrEmpty    = errors.New("no data loaded for session")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 4 * time.Hour

// Store holds per-session record sets. Implementations must isolate
// sessions: a Load never returns another session's records, and the slice
// returned is owned by the caller.
type Store interface {
	Create(ctx context.Context) (string, error)
	Load(ctx context.Context, id string) ([]datanorm.Record, error)
	Replace(ctx context.Context, id string, records []datanorm.Record) error
	Delete(ctx context.Context, id string) error
}

func newID() string { return uuid.NewString() }

// ValidID reports whether id looks like an identifier this package issued.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type memoryEntry struct {
	records []datanorm.Record
	loaded  bool
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Entries expire lazily on
// access once idle for longer than the TTL.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

// NewMemoryStore creates an in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	id := newID()
	s.entries[id] = &memoryEntry{expires: s.now().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) ([]datanorm.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if !e.loaded {
		return nil, ErrEmpty
	}
	out := make([]datanorm.Record, len(e.records))
	copy(out, e.records)
	return out, nil
}

func (s *MemoryStore) Replace(ctx context.Context, id string, records []datanorm.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.get(id)
	if err != nil {
		return err
	}
	e.records = make([]datanorm.Record, len(records))
	copy(e.records, records)
	e.loaded = true
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// get returns a live entry and slides its expiry. Caller holds mu.
func (s *MemoryStore) get(id string) (*memoryEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.After(e.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	e.expires = now.Add(s.ttl)
	return e, nil
}

// sweep drops expired entries. Caller holds mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
}
