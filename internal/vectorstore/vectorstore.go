// Package vectorstore defines the port to the nearest-neighbor index that
// holds document chunks, plus the record and filter types that cross it.
// Backends live in subpackages; the rest of the service only sees Index.
package vectorstore

import (
	"context"
	"errors"
)

// LanguageTag partitions a document's chunks by the language they were
// stored under. A search against one tag never returns chunks of the other.
type LanguageTag string

const (
	// TagOriginal marks chunks in the document's source language.
	TagOriginal LanguageTag = "original"
	// TagTranslated marks chunks translated to the pivot language.
	TagTranslated LanguageTag = "translated"
)

var (
	// ErrDimensionMismatch means a vector disagrees with the index's
	// configured dimension. The write is rejected before touching the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrIndexUnavailable means the index could not be reached. No retry is
	// attempted here; that belongs to a wrapping layer if anywhere.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// Record is one stored chunk: its vector plus the metadata needed to scope
// and surface it. Records are never updated in place; duplicates from
// repeated ingestion are tolerated.
type Record struct {
	Vector     []float32
	DocumentID string
	Tag        LanguageTag
	Text       string
}

// Filter restricts a search or deletion to records whose document id is in
// DocumentIDs (when non-empty) and whose tag equals Tag.
type Filter struct {
	DocumentIDs []string
	Tag         LanguageTag
}

// Passage is one search hit, ordered by descending similarity.
type Passage struct {
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
	DocumentID string  `json:"document_id"`
}

// Index is a namespaced vector index with metadata-filtered search.
// Implementations handle first-use initialization (collection creation,
// dimension, metric) themselves; callers never see it.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, filter Filter, topK int) ([]Passage, error)
	// Delete removes every record matching the filter. Deleting records
	// that do not exist is a no-op, not an error.
	Delete(ctx context.Context, filter Filter) error
}
