// Package session tracks chat history per student conversation.
package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyhall/tutor-rag/config"
)

// Message is a single chat turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the turns of one conversation.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// Store persists sessions. Get returns nil when the session is unknown
// or expired.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	AddMessage(ctx context.Context, id string, msg Message) error
	List(ctx context.Context, offset, limit int) ([]*Session, error)
}

// New selects the store named in the configuration. A nil config
// disables sessions and returns a nil Store.
func New(cfg *config.SessionConfig) (Store, error) {
	if cfg == nil {
		return nil, nil
	}
	switch strings.ToLower(cfg.Store) {
	case "", "inmemory":
		return NewMemoryStore(cfg), nil
	case "redis":
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
}

// NewMemoryStore builds a process-local store. Sessions expire after
// the configured TTL and the oldest are evicted past MaxSessions.
func NewMemoryStore(cfg *config.SessionConfig) Store {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &memoryStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		max:      cfg.MaxSessions,
	}
}

func (m *memoryStore) Create(context.Context) (*Session, error) {
	now := time.Now()
	s := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now, Messages: []Message{}}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.evictLocked()
	m.mu.Unlock()
	return s, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Since(s.UpdatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, nil
	}
	return s, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *memoryStore) AddMessage(_ context.Context, id string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	return nil
}

func (m *memoryStore) List(_ context.Context, offset, limit int) ([]*Session, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// evictLocked keeps at most max sessions, dropping the stalest.
func (m *memoryStore) evictLocked() {
	if m.max <= 0 || len(m.sessions) <= m.max {
		return
	}
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	for _, s := range all[m.max:] {
		delete(m.sessions, s.ID)
	}
}
