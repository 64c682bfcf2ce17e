// Package memory provides a brute-force in-memory Index for development and
// tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ocrqa/internal/vectorstore"
)

type Index struct {
	mu        sync.RWMutex
	dimension int
	records   []vectorstore.Record
}

func New(dimension int) *Index {
	return &Index{dimension: dimension}
}

func (idx *Index) Upsert(_ context.Context, records []vectorstore.Record) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, r := range records {
		if len(r.Vector) != idx.dimension {
			return fmt.Errorf("%w: got %d, index configured for %d",
				vectorstore.ErrDimensionMismatch, len(r.Vector), idx.dimension)
		}
	}
	idx.records = append(idx.records, records...)
	return nil
}

func (idx *Index) Search(_ context.Context, vector []float32, filter vectorstore.Filter, topK int) ([]vectorstore.Passage, error) {
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: got %d, index configured for %d",
			vectorstore.ErrDimensionMismatch, len(vector), idx.dimension)
	}
	if topK <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var hits []vectorstore.Passage
	for _, r := range idx.records {
		if !matches(r, filter) {
			continue
		}
		hits = append(hits, vectorstore.Passage{
			Text:       r.Text,
			Score:      cosineSimilarity(vector, r.Vector),
			DocumentID: r.DocumentID,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (idx *Index) Delete(_ context.Context, filter vectorstore.Filter) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := idx.records[:0]
	for _, r := range idx.records {
		if !matches(r, filter) {
			kept = append(kept, r)
		}
	}
	idx.records = kept
	return nil
}

func matches(r vectorstore.Record, f vectorstore.Filter) bool {
	if r.Tag != f.Tag {
		return false
	}
	if len(f.DocumentIDs) == 0 {
		return true
	}
	for _, id := range f.DocumentIDs {
		if r.DocumentID == id {
			return true
		}
	}
	return false
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
