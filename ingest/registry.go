// Package ingest turns uploaded documents into embedded chunks and keeps
// the vector store consistent across re-uploads.
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyhall/tutor-rag/config"
)

// Record is the registry entry for one ingested source file.
type Record struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Pages       int       `json:"pages"`
	Chunks      int       `json:"chunks"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Registry persists source fingerprints so re-uploads of identical
// content can be skipped. Get returns nil when the source is unknown.
type Registry interface {
	Get(ctx context.Context, source string) (*Record, error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, source string) error
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// NewRegistry selects the sqlite registry when a path is configured and
// the in-memory registry otherwise.
func NewRegistry(cfg config.IngestConfig) (Registry, error) {
	if cfg.RegistryPath != "" {
		return NewSQLiteRegistry(cfg.RegistryPath)
	}
	return NewMemoryRegistry(), nil
}

type memoryRegistry struct {
	mu   sync.RWMutex
	recs map[string]Record
}

// NewMemoryRegistry builds a process-local registry. Fingerprints are
// lost on restart, so every upload after a restart is treated as new.
func NewMemoryRegistry() Registry {
	return &memoryRegistry{recs: map[string]Record{}}
}

func (r *memoryRegistry) Get(_ context.Context, source string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[source]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memoryRegistry) Put(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.Source] = rec
	return nil
}

func (r *memoryRegistry) Delete(_ context.Context, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, source)
	return nil
}

func (r *memoryRegistry) List(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

func (r *memoryRegistry) Close() error { return nil }
