package vectordb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/schema"
)

const (
	fieldID          = "id"
	fieldText        = "text"
	fieldSource      = "source"
	fieldTitle       = "title"
	fieldPage        = "page"
	fieldChunkIndex  = "chunk_index"
	fieldChunkSize   = "chunk_size"
	fieldFingerprint = "fingerprint"
	fieldTotalPages  = "total_pages"
	fieldVector      = "vector"

	maxIDLength     = 64
	maxTextLength   = 65535
	maxSourceLength = 512

	hnswM              = 16
	hnswEfConstruction = 200
	hnswEfSearch       = 96
)

var outputFields = []string{
	fieldID, fieldText, fieldSource, fieldTitle, fieldPage,
	fieldChunkIndex, fieldChunkSize, fieldFingerprint, fieldTotalPages,
	fieldVector,
}

type milvusProvider struct {
	cli        client.Client
	collection string
	dimensions int
}

func newMilvus(ctx context.Context, cfg config.VectorDBConfig, dimensions int) (*milvusProvider, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}
	cli, err := client.NewClient(ctx, client.Config{
		Address:  fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("create milvus client failed, err: %w", err)
	}
	return &milvusProvider{
		cli:        cli,
		collection: cfg.Collection,
		dimensions: dimensions,
	}, nil
}

func (m *milvusProvider) EnsureCollection(ctx context.Context) error {
	has, err := m.cli.HasCollection(ctx, m.collection)
	if err != nil {
		return fmt.Errorf("check collection failed, err: %w", err)
	}
	if !has {
		sch := &entity.Schema{
			CollectionName: m.collection,
			AutoID:         false,
			Fields: []*entity.Field{
				entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxIDLength).WithIsPrimaryKey(true),
				entity.NewField().WithName(fieldText).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxTextLength),
				entity.NewField().WithName(fieldSource).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxSourceLength),
				entity.NewField().WithName(fieldTitle).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxSourceLength),
				entity.NewField().WithName(fieldPage).WithDataType(entity.FieldTypeInt64),
				entity.NewField().WithName(fieldChunkIndex).WithDataType(entity.FieldTypeInt64),
				entity.NewField().WithName(fieldChunkSize).WithDataType(entity.FieldTypeInt64),
				entity.NewField().WithName(fieldFingerprint).WithDataType(entity.FieldTypeVarChar).
					WithMaxLength(maxIDLength),
				entity.NewField().WithName(fieldTotalPages).WithDataType(entity.FieldTypeInt64),
				entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).
					WithDim(int64(m.dimensions)),
			},
		}
		if err := m.cli.CreateCollection(ctx, sch, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection failed, err: %w", err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEfConstruction)
		if err != nil {
			return fmt.Errorf("build vector index failed, err: %w", err)
		}
		if err := m.cli.CreateIndex(ctx, m.collection, fieldVector, idx, false); err != nil {
			return fmt.Errorf("create vector index failed, err: %w", err)
		}
		// Source lookups back document replacement; index the filename.
		if err := m.cli.CreateIndex(ctx, m.collection, fieldSource, entity.NewScalarIndex(), false); err != nil {
			return fmt.Errorf("create source index failed, err: %w", err)
		}
		logger.Infof("created collection %s (dim=%d, metric=COSINE)", m.collection, m.dimensions)
	}
	if err := m.cli.LoadCollection(ctx, m.collection, false); err != nil {
		return fmt.Errorf("load collection failed, err: %w", err)
	}
	return nil
}

func (m *milvusProvider) Upsert(ctx context.Context, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	sources := make([]string, len(docs))
	titles := make([]string, len(docs))
	pages := make([]int64, len(docs))
	chunkIdx := make([]int64, len(docs))
	chunkSize := make([]int64, len(docs))
	fingerprints := make([]string, len(docs))
	totalPages := make([]int64, len(docs))
	vectors := make([][]float32, len(docs))

	for i, d := range docs {
		if len(d.Vector) != m.dimensions {
			return fmt.Errorf("document %s has %d-dim vector, collection expects %d", d.ID, len(d.Vector), m.dimensions)
		}
		ids[i] = d.ID
		texts[i] = truncateRunes(d.Text, maxTextLength)
		sources[i] = metaString(d.Metadata, schema.MetaSource)
		titles[i] = metaString(d.Metadata, schema.MetaTitle)
		pages[i] = metaInt(d.Metadata, schema.MetaPage)
		chunkIdx[i] = metaInt(d.Metadata, schema.MetaChunkIndex)
		chunkSize[i] = metaInt(d.Metadata, schema.MetaChunkSize)
		fingerprints[i] = metaString(d.Metadata, schema.MetaFingerprint)
		totalPages[i] = metaInt(d.Metadata, schema.MetaTotalPages)
		vectors[i] = d.Vector
	}

	_, err := m.cli.Upsert(ctx, m.collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnVarChar(fieldSource, sources),
		entity.NewColumnVarChar(fieldTitle, titles),
		entity.NewColumnInt64(fieldPage, pages),
		entity.NewColumnInt64(fieldChunkIndex, chunkIdx),
		entity.NewColumnInt64(fieldChunkSize, chunkSize),
		entity.NewColumnVarChar(fieldFingerprint, fingerprints),
		entity.NewColumnInt64(fieldTotalPages, totalPages),
		entity.NewColumnFloatVector(fieldVector, m.dimensions, vectors),
	)
	if err != nil {
		return fmt.Errorf("upsert %d documents failed, err: %w", len(docs), err)
	}
	return nil
}

func (m *milvusProvider) ListSourceIDs(ctx context.Context, source string) ([]string, error) {
	expr := fmt.Sprintf("%s == \"%s\"", fieldSource, escapeExpr(source))
	rs, err := m.cli.Query(ctx, m.collection, nil, expr, []string{fieldID})
	if err != nil {
		return nil, fmt.Errorf("query source %s failed, err: %w", source, err)
	}
	col := rs.GetColumn(fieldID)
	if col == nil {
		return nil, nil
	}
	ids := make([]string, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		id, err := col.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("read id column failed, err: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *milvusProvider) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := m.cli.DeleteByPks(ctx, m.collection, "", entity.NewColumnVarChar(fieldID, ids)); err != nil {
		return fmt.Errorf("delete %d documents failed, err: %w", len(ids), err)
	}
	return nil
}

func (m *milvusProvider) Search(ctx context.Context, vector []float32, topK int) ([]schema.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	sp, err := entity.NewIndexHNSWSearchParam(hnswEfSearch)
	if err != nil {
		return nil, fmt.Errorf("build search param failed, err: %w", err)
	}
	results, err := m.cli.Search(ctx, m.collection, nil, "", outputFields,
		[]entity.Vector{entity.FloatVector(vector)}, fieldVector, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search failed, err: %w", err)
	}

	var out []schema.SearchResult
	for _, r := range results {
		for i := 0; i < r.ResultCount; i++ {
			doc, err := documentAt(r.Fields, i)
			if err != nil {
				return nil, err
			}
			out = append(out, schema.SearchResult{
				Document: doc,
				Score:    float64(r.Scores[i]),
			})
		}
	}
	return out, nil
}

func (m *milvusProvider) Stats(ctx context.Context) (CollectionStats, error) {
	stats := CollectionStats{Name: m.collection}
	raw, err := m.cli.GetCollectionStatistics(ctx, m.collection)
	if err != nil {
		return stats, fmt.Errorf("collection statistics failed, err: %w", err)
	}
	if v, ok := raw["row_count"]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			stats.RowCount = n
		}
	}
	return stats, nil
}

func (m *milvusProvider) Close() error {
	return m.cli.Close()
}

func documentAt(rs client.ResultSet, i int) (schema.Document, error) {
	doc := schema.Document{Metadata: map[string]any{}}
	for _, name := range []string{fieldSource, fieldTitle, fieldFingerprint} {
		v, err := columnString(rs, name, i)
		if err != nil {
			return doc, err
		}
		doc.Metadata[name] = v
	}
	for _, name := range []string{fieldPage, fieldChunkIndex, fieldChunkSize, fieldTotalPages} {
		v, err := columnInt(rs, name, i)
		if err != nil {
			return doc, err
		}
		doc.Metadata[name] = v
	}
	var err error
	if doc.ID, err = columnString(rs, fieldID, i); err != nil {
		return doc, err
	}
	if doc.Text, err = columnString(rs, fieldText, i); err != nil {
		return doc, err
	}
	if col := rs.GetColumn(fieldVector); col != nil {
		if fv, ok := col.(*entity.ColumnFloatVector); ok && i < fv.Len() {
			doc.Vector = fv.Data()[i]
		}
	}
	return doc, nil
}

func columnString(rs client.ResultSet, name string, i int) (string, error) {
	col := rs.GetColumn(name)
	if col == nil {
		return "", nil
	}
	v, err := col.GetAsString(i)
	if err != nil {
		return "", fmt.Errorf("read column %s failed, err: %w", name, err)
	}
	return v, nil
}

func columnInt(rs client.ResultSet, name string, i int) (int64, error) {
	col := rs.GetColumn(name)
	if col == nil {
		return 0, nil
	}
	v, err := col.GetAsInt64(i)
	if err != nil {
		return 0, fmt.Errorf("read column %s failed, err: %w", name, err)
	}
	return v, nil
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int64 {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func escapeExpr(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
