package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/schema"
)

// Answers caches answered outcomes keyed by question and intent. A nil
// *Answers is valid and caches nothing, so callers need no enabled
// checks.
type Answers struct {
	lru Cache
	ttl time.Duration
}

// NewAnswers builds the answer cache, or nil when caching is disabled.
func NewAnswers(cfg *config.CacheConfig) *Answers {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	return &Answers{lru: NewLRU(cfg.Capacity, ttl), ttl: ttl}
}

// Key derives the cache key for a question under an intent. Intent is
// part of the key so a catalog change invalidates naturally.
func Key(question, intent string) string {
	sum := sha1.Sum([]byte(question + "|" + intent))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached outcome for the question, if any.
func (a *Answers) Get(question, intent string) (schema.Outcome, bool) {
	if a == nil {
		return schema.Outcome{}, false
	}
	v, ok := a.lru.Get(Key(question, intent))
	if !ok {
		return schema.Outcome{}, false
	}
	out, ok := v.(schema.Outcome)
	return out, ok
}

// Put stores an outcome. Only answered outcomes are cached: failures
// and refusals should be retried on the next ask.
func (a *Answers) Put(question, intent string, out schema.Outcome) {
	if a == nil || out.Kind != schema.OutcomeAnswered {
		return
	}
	a.lru.Set(Key(question, intent), out, a.ttl)
}
