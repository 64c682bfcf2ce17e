// Package embedstore couples the embedding model to the vector index and
// exposes the per-document, per-language namespace the rest of the service
// works in.
package embedstore

import (
	"context"
	"fmt"
	"strings"

	"ocrqa/internal/vectorstore"
)

// Embedding APIs commonly cap the number of inputs per call.
const embedBatchSize = 10

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Config struct {
	Dimension int
}

// Store writes and queries (vector, document id, language tag, text)
// records. Upserts are additive: re-ingesting the same content appends
// duplicate records rather than replacing them.
type Store struct {
	embedder  embedder
	index     vectorstore.Index
	dimension int
}

func New(embedder embedder, index vectorstore.Index, cfg Config) (*Store, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.Dimension)
	}
	return &Store{embedder: embedder, index: index, dimension: cfg.Dimension}, nil
}

// Upsert embeds each chunk and stores it under (documentID, tag). Vectors
// whose dimension disagrees with the configured one are rejected before
// anything is written. Whitespace-only chunks are skipped here rather than
// sent: embedding backends reject or drop blank inputs, which would break
// the one-vector-per-chunk accounting mid-batch.
func (s *Store) Upsert(ctx context.Context, documentID string, tag vectorstore.LanguageTag, rawChunks []string) error {
	chunks := make([]string, 0, len(rawChunks))
	for _, c := range rawChunks {
		if strings.TrimSpace(c) != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return nil
	}

	records := make([]vectorstore.Record, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		vectors, err := s.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed chunks failed: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(batch), len(vectors))
		}
		for i, vec := range vectors {
			if len(vec) != s.dimension {
				return fmt.Errorf("%w: embedding has %d dimensions, store configured for %d",
					vectorstore.ErrDimensionMismatch, len(vec), s.dimension)
			}
			records = append(records, vectorstore.Record{
				Vector:     vec,
				DocumentID: documentID,
				Tag:        tag,
				Text:       batch[i],
			})
		}
	}
	return s.index.Upsert(ctx, records)
}

// Search embeds the query and returns the topK nearest chunks restricted to
// the given document ids and tag. A document never ingested under the tag
// simply contributes nothing.
func (s *Store) Search(ctx context.Context, documentIDs []string, tag vectorstore.LanguageTag, query string, topK int) ([]vectorstore.Passage, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, store configured for %d",
			vectorstore.ErrDimensionMismatch, len(vector), s.dimension)
	}
	return s.index.Search(ctx, vector, vectorstore.Filter{DocumentIDs: documentIDs, Tag: tag}, topK)
}

// Delete removes every record for the document under both language tags.
// Idempotent: deleting an unknown document is a no-op.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	for _, tag := range []vectorstore.LanguageTag{vectorstore.TagOriginal, vectorstore.TagTranslated} {
		err := s.index.Delete(ctx, vectorstore.Filter{DocumentIDs: []string{documentID}, Tag: tag})
		if err != nil {
			return fmt.Errorf("delete %s records failed: %w", tag, err)
		}
	}
	return nil
}
