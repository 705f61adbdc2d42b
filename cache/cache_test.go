package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/schema"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	// touch a so b becomes the eviction candidate
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3, 0)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU(4, time.Minute)
	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLRUPurge(t *testing.T) {
	c := NewLRU(4, time.Minute)
	c.Set("k", "v", 0)
	c.Purge()
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestAnswersRoundTrip(t *testing.T) {
	a := NewAnswers(&config.CacheConfig{Enabled: true, Capacity: 8, TTLSeconds: 60})
	out := schema.Outcome{Kind: schema.OutcomeAnswered, Answer: "ответ", Sources: []string{"a.pdf"}}

	a.Put("вопрос", "medical_question", out)

	got, ok := a.Get("вопрос", "medical_question")
	require.True(t, ok)
	assert.Equal(t, out.Answer, got.Answer)

	// a different intent misses
	_, ok = a.Get("вопрос", "general_question")
	assert.False(t, ok)
}

func TestAnswersSkipsNonAnswered(t *testing.T) {
	a := NewAnswers(&config.CacheConfig{Enabled: true, Capacity: 8, TTLSeconds: 60})
	a.Put("вопрос", "x", schema.Outcome{Kind: schema.OutcomeNoContext})
	a.Put("вопрос2", "x", schema.Outcome{Kind: schema.OutcomeError, Err: fmt.Errorf("boom")})

	_, ok := a.Get("вопрос", "x")
	assert.False(t, ok)
	_, ok = a.Get("вопрос2", "x")
	assert.False(t, ok)
}

func TestAnswersNilIsNoop(t *testing.T) {
	var a *Answers
	a.Put("вопрос", "x", schema.Outcome{Kind: schema.OutcomeAnswered, Answer: "ответ"})
	_, ok := a.Get("вопрос", "x")
	assert.False(t, ok)

	assert.Nil(t, NewAnswers(nil))
	assert.Nil(t, NewAnswers(&config.CacheConfig{Enabled: false}))
}
