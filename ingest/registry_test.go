package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryContract(t *testing.T, reg Registry) {
	t.Helper()
	ctx := context.Background()

	rec, err := reg.Get(ctx, "missing.pdf")
	require.NoError(t, err)
	assert.Nil(t, rec)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, reg.Put(ctx, Record{
		Source: "a.pdf", Fingerprint: "f1", Pages: 3, Chunks: 7, UpdatedAt: now,
	}))
	require.NoError(t, reg.Put(ctx, Record{
		Source: "b.pdf", Fingerprint: "f2", Pages: 1, Chunks: 2, UpdatedAt: now,
	}))

	rec, err = reg.Get(ctx, "a.pdf")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "f1", rec.Fingerprint)
	assert.Equal(t, 3, rec.Pages)

	// put is an upsert
	require.NoError(t, reg.Put(ctx, Record{
		Source: "a.pdf", Fingerprint: "f3", Pages: 4, Chunks: 9, UpdatedAt: now,
	}))
	rec, err = reg.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "f3", rec.Fingerprint)

	recs, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.pdf", recs[0].Source)
	assert.Equal(t, "b.pdf", recs[1].Source)

	require.NoError(t, reg.Delete(ctx, "a.pdf"))
	rec, err = reg.Get(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryRegistry(t *testing.T) {
	reg := NewMemoryRegistry()
	defer reg.Close()
	registryContract(t, reg)
}

func TestSQLiteRegistry(t *testing.T) {
	reg, err := NewSQLiteRegistry(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer reg.Close()
	registryContract(t, reg)
}
