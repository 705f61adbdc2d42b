// Package tutorrag answers student questions from an ingested corpus of
// course documents.
package tutorrag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studyhall/tutor-rag/cache"
	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/compose"
	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/embedding"
	"github.com/studyhall/tutor-rag/ingest"
	"github.com/studyhall/tutor-rag/intent"
	"github.com/studyhall/tutor-rag/llm"
	"github.com/studyhall/tutor-rag/metrics"
	"github.com/studyhall/tutor-rag/retrieve"
	"github.com/studyhall/tutor-rag/schema"
	"github.com/studyhall/tutor-rag/session"
	"github.com/studyhall/tutor-rag/textsplitter"
	"github.com/studyhall/tutor-rag/vectordb"
)

// TutorClient wires the full question-answering pipeline: ingestion on
// one side, classification, retrieval and generation on the other.
type TutorClient struct {
	cfg        *config.Config
	embedder   embedding.Provider
	generator  llm.Provider
	store      vectordb.Provider
	splitter   textsplitter.Splitter
	classifier *intent.Classifier
	retriever  *retrieve.Retriever
	composer   *compose.Composer
	ingestor   *ingest.Controller
	registry   ingest.Registry
	sessions   session.Store
	answers    *cache.Answers
}

// NewTutorClient builds a client from validated configuration and
// prepares the vector collection.
func NewTutorClient(ctx context.Context, cfg *config.Config) (*TutorClient, error) {
	c := &TutorClient{cfg: cfg, composer: compose.New()}

	splitter, err := textsplitter.New(cfg.Splitter)
	if err != nil {
		return nil, fmt.Errorf("create text splitter failed, err: %w", err)
	}
	c.splitter = splitter

	c.embedder, err = embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider failed, err: %w", err)
	}

	c.generator, err = llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider failed, err: %w", err)
	}

	c.store, err = vectordb.New(ctx, cfg.VectorDB, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("create vector store provider failed, err: %w", err)
	}
	if err := c.store.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("prepare collection failed, err: %w", err)
	}

	c.registry, err = ingest.NewRegistry(cfg.Ingest)
	if err != nil {
		return nil, fmt.Errorf("create document registry failed, err: %w", err)
	}
	c.ingestor = ingest.NewController(cfg.Ingest, c.splitter, c.embedder, c.store, c.registry)

	weights := intent.Weights{
		Keyword: cfg.Intent.KeywordWeight,
		Pattern: cfg.Intent.PatternWeight,
		Divisor: cfg.Intent.ScoreDivisor,
	}
	c.classifier = intent.NewClassifier(weights)
	c.retriever = retrieve.New(cfg.Retrieval, c.embedder, c.store)

	c.sessions, err = session.New(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("create session store failed, err: %w", err)
	}
	c.answers = cache.NewAnswers(cfg.Cache)

	return c, nil
}

// Ingest validates and processes one uploaded document.
func (c *TutorClient) Ingest(ctx context.Context, filename string, data []byte) (schema.IngestReport, error) {
	return c.ingestor.Ingest(ctx, filename, data)
}

// ListDocuments returns the registry entries of every ingested document.
func (c *TutorClient) ListDocuments(ctx context.Context) ([]ingest.Record, error) {
	return c.ingestor.List(ctx)
}

// DeleteDocument removes a document's chunks and registry entry,
// returning the number of chunks deleted.
func (c *TutorClient) DeleteDocument(ctx context.Context, filename string) (int, error) {
	return c.ingestor.Delete(ctx, filename)
}

// Ask answers one question. The returned outcome is always complete:
// failures surface as Kind tags, not as sentinel answer strings. The
// error return covers only invalid input.
func (c *TutorClient) Ask(ctx context.Context, question, sessionID string) (schema.Outcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return schema.Outcome{}, fmt.Errorf("question is required")
	}

	analysis := c.classifier.Analyze(question)
	metrics.IncIntent(analysis.Intent)

	if out, ok := c.answers.Get(question, analysis.Intent); ok {
		c.record(ctx, sessionID, question, out.Answer)
		return out, nil
	}

	variants := intent.Variants(question, analysis)
	merged, err := c.retriever.Retrieve(ctx, variants)

	var out schema.Outcome
	switch {
	case err != nil:
		// all variants failing is a retrieval miss, not a hard error
		out = schema.Outcome{
			Kind:       schema.OutcomeNoContext,
			Answer:     compose.CuratorFallback,
			Intent:     analysis.Intent,
			Confidence: analysis.Confidence,
			Err:        err,
		}
	case len(merged.Items) == 0:
		out = c.composer.Outcome("", nil, analysis, merged)
	default:
		system, user := c.composer.Prompt(question, analysis, merged)
		answer, genErr := c.generator.Generate(ctx, system, user)
		out = c.composer.Outcome(answer, genErr, analysis, merged)
	}

	if analysis.Confidence < c.cfg.Retrieval.SuggestionThreshold {
		out.Suggestions = c.classifier.SuggestRelated(analysis.Intent)
	}

	metrics.IncAskOutcome(string(out.Kind))
	if out.Err != nil {
		logger.Warnf("ask degraded to %s (intent=%s), err: %v", out.Kind, analysis.Intent, out.Err)
	}
	c.answers.Put(question, analysis.Intent, out)
	c.record(ctx, sessionID, question, out.Answer)
	return out, nil
}

// CreateSession opens a new chat session, or fails when sessions are
// disabled.
func (c *TutorClient) CreateSession(ctx context.Context) (*session.Session, error) {
	if c.sessions == nil {
		return nil, fmt.Errorf("sessions are not configured")
	}
	return c.sessions.Create(ctx)
}

// DeleteSession drops a chat session. Returns false when it did not
// exist.
func (c *TutorClient) DeleteSession(ctx context.Context, id string) (bool, error) {
	if c.sessions == nil {
		return false, fmt.Errorf("sessions are not configured")
	}
	return c.sessions.Delete(ctx, id)
}

// Stats reports the vector collection state.
func (c *TutorClient) Stats(ctx context.Context) (vectordb.CollectionStats, error) {
	return c.store.Stats(ctx)
}

// Close releases the store, registry and other held resources.
func (c *TutorClient) Close() error {
	var first error
	if err := c.registry.Close(); err != nil {
		first = err
	}
	if err := c.store.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// record appends the question/answer pair to the session, best-effort.
func (c *TutorClient) record(ctx context.Context, sessionID, question, answer string) {
	if c.sessions == nil || sessionID == "" {
		return
	}
	now := time.Now()
	if err := c.sessions.AddMessage(ctx, sessionID, session.Message{Role: "user", Content: question, Timestamp: now}); err != nil {
		logger.Warnf("record user message failed, err: %v", err)
		return
	}
	if err := c.sessions.AddMessage(ctx, sessionID, session.Message{Role: "assistant", Content: answer, Timestamp: now}); err != nil {
		logger.Warnf("record assistant message failed, err: %v", err)
	}
}
