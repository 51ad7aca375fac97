// Package identity persists the anonymous user identifier that the SDK
// attaches to every request. The identifier is generated once per
// installation, stored through a small key-value port, and never changes
// afterwards: identity drift would silently break vote attribution and the
// server-resolved userHasVoted flag.
package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// userIDKey is the key under which the anonymous identifier is persisted.
const userIDKey = "anonymous_user_id"

// KV is the persistence port the Store writes through. Implementations must
// be durable across process restarts (see NewSQLiteKV) except for test
// doubles (see NewMemoryKV).
type KV interface {
	// Get returns the stored value for key, with ok=false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// SetIfAbsent stores value under key unless a value already exists, and
	// returns the value that is durably stored after the call. First write
	// wins: when two processes race on the first-ever resolution, both must
	// observe the same winning value.
	SetIfAbsent(ctx context.Context, key, value string) (stored string, err error)
}

// Store resolves and caches the anonymous user identifier.
// Safe for concurrent use.
type Store struct {
	kv KV

	mu     sync.Mutex
	cached string
}

// NewStore returns a Store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// GetOrCreateUserID returns the stable anonymous identifier for this
// installation. On the first ever call it generates a random UUID and
// persists it through the KV's first-write-wins semantics; every later call,
// including after a process restart against the same KV, returns the same
// value.
//
// A storage error is returned as-is. Callers that need a stable identity
// (the API client) must treat it as fatal rather than continue with a
// throwaway one.
func (s *Store) GetOrCreateUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, nil
	}

	if v, ok, err := s.kv.Get(ctx, userIDKey); err != nil {
		return "", fmt.Errorf("identity: read user id: %w", err)
	} else if ok {
		s.cached = v
		return v, nil
	}

	stored, err := s.kv.SetIfAbsent(ctx, userIDKey, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("identity: persist user id: %w", err)
	}
	s.cached = stored
	return stored, nil
}

// MemoryKV is an in-process KV for tests and throwaway environments. It is
// safe for concurrent use but obviously not durable.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// SetIfAbsent implements KV with first-write-wins semantics.
func (m *MemoryKV) SetIfAbsent(_ context.Context, key, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	m.data[key] = value
	return value, nil
}
