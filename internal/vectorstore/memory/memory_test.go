package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrqa/internal/vectorstore"
)

func rec(docID string, tag vectorstore.LanguageTag, text string, vec []float32) vectorstore.Record {
	return vectorstore.Record{Vector: vec, DocumentID: docID, Tag: tag, Text: text}
}

func TestSearchFiltersByDocumentAndTag(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{
		rec("doc-1", vectorstore.TagOriginal, "orig one", []float32{1, 0}),
		rec("doc-1", vectorstore.TagTranslated, "trans one", []float32{1, 0}),
		rec("doc-2", vectorstore.TagOriginal, "orig two", []float32{1, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, vectorstore.Filter{
		DocumentIDs: []string{"doc-1"},
		Tag:         vectorstore.TagOriginal,
	}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "orig one", hits[0].Text)
	require.Equal(t, "doc-1", hits[0].DocumentID)
}

func TestSearchUnknownDocumentReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{
		rec("doc-1", vectorstore.TagOriginal, "text", []float32{1, 0}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, vectorstore.Filter{
		DocumentIDs: []string{"doc-never-ingested"},
		Tag:         vectorstore.TagOriginal,
	}, 5)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestSearchRanksByCosineAndHonorsTopK(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{
		rec("doc-1", vectorstore.TagOriginal, "far", []float32{0, 1}),
		rec("doc-1", vectorstore.TagOriginal, "near", []float32{1, 0}),
		rec("doc-1", vectorstore.TagOriginal, "mid", []float32{1, 1}),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, vectorstore.Filter{
		DocumentIDs: []string{"doc-1"},
		Tag:         vectorstore.TagOriginal,
	}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "near", hits[0].Text)
	require.Equal(t, "mid", hits[1].Text)
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	idx := New(3)
	err := idx.Upsert(context.Background(), []vectorstore.Record{
		rec("doc-1", vectorstore.TagOriginal, "bad", []float32{1, 0}),
	})
	require.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)

	// The rejected batch must not have been stored.
	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, vectorstore.Filter{Tag: vectorstore.TagOriginal}, 5)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{
		rec("doc-1", vectorstore.TagOriginal, "text", []float32{1, 0}),
	}))

	filter := vectorstore.Filter{DocumentIDs: []string{"doc-1"}, Tag: vectorstore.TagOriginal}
	require.NoError(t, idx.Delete(ctx, filter))
	require.NoError(t, idx.Delete(ctx, filter))

	hits, err := idx.Search(ctx, []float32{1, 0}, filter, 5)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestDuplicateRecordsAreKept(t *testing.T) {
	ctx := context.Background()
	idx := New(2)
	same := rec("doc-1", vectorstore.TagOriginal, "same text", []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{same}))
	require.NoError(t, idx.Upsert(ctx, []vectorstore.Record{same}))

	hits, err := idx.Search(ctx, []float32{1, 0}, vectorstore.Filter{
		DocumentIDs: []string{"doc-1"},
		Tag:         vectorstore.TagOriginal,
	}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}
