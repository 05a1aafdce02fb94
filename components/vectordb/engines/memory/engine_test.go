package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/components/embedder"
	"github.com/bububa/teachassist/components/vectordb"
)

func record(text string, vector ...float64) vectordb.Record {
	return vectordb.NewRecord(embedder.Embedding{Object: text, Embedding: vector})
}

func TestEngine(t *testing.T) {
	ctx := context.Background()
	e := New(vectordb.WithTopK(2))
	require.NoError(t, e.Insert(ctx, "", record("hours", 1, 0), record("refunds", 0, 1), record("hours and refunds", 1, 1)))
	assert.True(t, e.HasCollection(vectordb.DefaultCollection))

	t.Run("Should return the closest records first", func(t *testing.T) {
		got, err := e.Search(ctx, []float64{1, 0.1})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "hours", got[0].Text())
		assert.Equal(t, "hours and refunds", got[1].Text())
		assert.Greater(t, got[0].Score, got[1].Score)
	})

	t.Run("Should apply content filters", func(t *testing.T) {
		got, err := e.Search(ctx, []float64{1, 0}, vectordb.SearchWithExclude("refunds"), vectordb.SearchWithTopK(5))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "hours", got[0].Text())
	})

	t.Run("Should upsert by ID", func(t *testing.T) {
		require.NoError(t, e.Insert(ctx, "", record("hours", 1, 0)))
		got, err := e.Search(ctx, []float64{1, 0}, vectordb.SearchWithTopK(5))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Should report missing collections", func(t *testing.T) {
		_, err := e.Search(ctx, []float64{1, 0}, vectordb.SearchWithCollection("nope"))
		assert.ErrorIs(t, err, vectordb.ErrMissingCollection)
	})
}
