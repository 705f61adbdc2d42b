package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/embedding"
	"github.com/studyhall/tutor-rag/extract"
	"github.com/studyhall/tutor-rag/metrics"
	"github.com/studyhall/tutor-rag/normalize"
	"github.com/studyhall/tutor-rag/quality"
	"github.com/studyhall/tutor-rag/schema"
	"github.com/studyhall/tutor-rag/textsplitter"
	"github.com/studyhall/tutor-rag/vectordb"
)

type pagesFunc func(filename string, data []byte) ([]schema.RawPage, error)

// Controller runs the ingestion state machine: fingerprint, clean,
// dedup, filter, chunk, purge stale chunks, embed, upsert. Re-uploading
// identical bytes is a no-op; changed bytes replace the old chunks
// atomically with respect to the registry.
type Controller struct {
	cfg      config.IngestConfig
	cleaner  *normalize.Engine
	filter   *quality.Filter
	splitter textsplitter.Splitter
	embedder embedding.Provider
	store    vectordb.Provider
	registry Registry
	pages    pagesFunc

	// one mutex per source filename serializes concurrent uploads of
	// the same document without blocking unrelated ones
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewController wires the ingestion pipeline.
func NewController(cfg config.IngestConfig, splitter textsplitter.Splitter, embedder embedding.Provider,
	store vectordb.Provider, registry Registry) *Controller {
	return &Controller{
		cfg:      cfg,
		cleaner:  normalize.New(normalize.DefaultRules()),
		filter:   quality.NewFilter(),
		splitter: splitter,
		embedder: embedder,
		store:    store,
		registry: registry,
		pages:    extract.Pages,
		locks:    map[string]*sync.Mutex{},
	}
}

// Ingest processes one uploaded file. The returned report is meaningful
// even when err is non-nil: State says how far the attempt got.
func (c *Controller) Ingest(ctx context.Context, filename string, data []byte) (schema.IngestReport, error) {
	report := schema.IngestReport{File: filename, State: schema.IngestFailed}
	if err := extract.ValidateUpload(filename, int64(len(data)), c.cfg); err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}

	unlock := c.lock(filename)
	defer unlock()

	sum := sha256.Sum256(data)
	report.Fingerprint = hex.EncodeToString(sum[:])

	prev, err := c.registry.Get(ctx, filename)
	if err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}
	if prev != nil && prev.Fingerprint == report.Fingerprint {
		report.State = schema.IngestUnchanged
		report.Pages = prev.Pages
		metrics.IncIngestOutcome(string(report.State))
		logger.Infof("ingest %s: content unchanged, skipping", filename)
		return report, nil
	}

	pages, err := c.pages(filename, data)
	if err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}
	report.Pages = len(pages)

	chunks, dups, filtered := c.prepare(pages, report.Fingerprint)
	report.Duplicates = dups
	report.Filtered = filtered
	if len(chunks) == 0 {
		metrics.IncIngestOutcome(string(report.State))
		return report, fmt.Errorf("no usable content in %s after cleaning", filename)
	}

	// A failed purge aborts the replace: inserting fresh chunks next to
	// stale ones would let contradictory revisions answer together.
	deleted, err := c.purge(ctx, filename)
	if err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}
	report.ChunksDeleted = deleted

	docs, err := c.embed(ctx, chunks)
	if err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}
	if err := c.store.Upsert(ctx, docs); err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}
	report.ChunksInserted = len(docs)

	// The registry commits last: on any earlier failure the stored
	// fingerprint still names the content that is actually searchable.
	if err := c.registry.Put(ctx, Record{
		Source:      filename,
		Fingerprint: report.Fingerprint,
		Pages:       report.Pages,
		Chunks:      len(docs),
		UpdatedAt:   time.Now(),
	}); err != nil {
		metrics.IncIngestOutcome(string(report.State))
		return report, err
	}

	report.State = schema.IngestReplaced
	metrics.IncIngestOutcome(string(report.State))
	logger.Infof("ingest %s: %d pages, %d chunks inserted, %d stale deleted, %d duplicates, %d filtered",
		filename, report.Pages, report.ChunksInserted, report.ChunksDeleted, dups, filtered)
	return report, nil
}

// Delete removes a document's chunks and registry entry.
func (c *Controller) Delete(ctx context.Context, filename string) (int, error) {
	unlock := c.lock(filename)
	defer unlock()

	deleted, err := c.purge(ctx, filename)
	if err != nil {
		return 0, err
	}
	if err := c.registry.Delete(ctx, filename); err != nil {
		return deleted, err
	}
	logger.Infof("deleted document %s (%d chunks)", filename, deleted)
	return deleted, nil
}

// List returns the registry entries for every ingested document.
func (c *Controller) List(ctx context.Context) ([]Record, error) {
	return c.registry.List(ctx)
}

// prepare cleans page texts and turns them into chunks. Pages whose
// cleaned text duplicates an earlier page are dropped (first occurrence
// wins), as are pages failing the quality filter and tail chunks
// shorter than the configured minimum.
func (c *Controller) prepare(pages []schema.RawPage, fingerprint string) (chunks []schema.Chunk, dups, filtered int) {
	type passage struct {
		text string
		page schema.RawPage
	}

	seen := map[string]struct{}{}
	var passages []passage
	for _, p := range pages {
		cleaned := c.cleaner.Clean(p.Text, fmt.Sprintf("%s#%d", p.Source, p.Page))
		if cleaned == "" {
			continue
		}
		key := quality.NormalizeKey(cleaned)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
		if !c.filter.Acceptable(cleaned) {
			filtered++
			continue
		}
		passages = append(passages, passage{text: cleaned, page: p})
	}
	metrics.AddDroppedPassages("duplicate", dups)
	metrics.AddDroppedPassages("filtered", filtered)

	short := 0
	idx := 0
	for _, ps := range passages {
		for _, part := range c.splitter.SplitText(ps.text) {
			if utf8.RuneCountInString(part) < c.cfg.MinChunkLength {
				short++
				continue
			}
			chunks = append(chunks, schema.Chunk{
				Text:        part,
				Source:      ps.page.Source,
				Page:        ps.page.Page,
				Title:       ps.page.Title,
				Index:       idx,
				Size:        utf8.RuneCountInString(part),
				Fingerprint: fingerprint,
				TotalPages:  ps.page.TotalPages,
			})
			idx++
		}
	}
	metrics.AddDroppedPassages("short_chunk", short)
	return chunks, dups, filtered
}

// purge deletes all existing chunks of a source, retrying transient
// store failures with a fixed backoff.
func (c *Controller) purge(ctx context.Context, filename string) (int, error) {
	ids, err := c.store.ListSourceIDs(ctx, filename)
	if err != nil {
		return 0, fmt.Errorf("list chunks of %s failed, err: %w", filename, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	attempts := c.cfg.DeleteRetries
	if attempts <= 0 {
		attempts = 1
	}
	err = retry.Do(
		func() error { return c.store.DeleteByIDs(ctx, ids) },
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(time.Duration(c.cfg.DeleteBackoffMs)*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, fmt.Errorf("purge %d stale chunks of %s failed, err: %w", len(ids), filename, err)
	}
	return len(ids), nil
}

func (c *Controller) embed(ctx context.Context, chunks []schema.Chunk) ([]schema.Document, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vecs, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks failed, err: %w", len(chunks), err)
	}

	docs := make([]schema.Document, len(chunks))
	for i, ch := range chunks {
		docs[i] = schema.Document{
			ID:     uuid.NewString(),
			Text:   ch.Text,
			Vector: vecs[i],
			Metadata: map[string]any{
				schema.MetaSource:      ch.Source,
				schema.MetaPage:        ch.Page,
				schema.MetaTitle:       ch.Title,
				schema.MetaChunkIndex:  ch.Index,
				schema.MetaChunkSize:   ch.Size,
				schema.MetaFingerprint: ch.Fingerprint,
				schema.MetaTotalPages:  ch.TotalPages,
			},
		}
	}
	return docs, nil
}

func (c *Controller) lock(name string) func() {
	c.mu.Lock()
	l, ok := c.locks[name]
	if !ok {
		l = &sync.Mutex{}
		c.locks[name] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}
