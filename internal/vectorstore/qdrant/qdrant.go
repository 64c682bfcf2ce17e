// Package qdrant is a minimal REST backend for the vector index port. It
// creates the collection on first use with the configured dimension and
// metric, stores chunk text and scoping metadata in the point payload, and
// filters searches and deletions on document id and language tag.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"sync"
	"time"

	"ocrqa/internal/vectorstore"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Metric     string // cosine / dot / euclidean
	Timeout    time.Duration
}

type Index struct {
	cfg    Config
	client *http.Client

	initMu sync.Mutex
	ready  bool

	idSeq uint64
	idMu  sync.Mutex
}

func New(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// ensureCollection lazily creates the collection. Qdrant answers 200 on a
// create for an already-existing collection with the same schema. Only
// success latches: a failed create (broker down, cancelled first request)
// is retried on the next call instead of being cached for the process
// lifetime.
func (idx *Index) ensureCollection(ctx context.Context) error {
	idx.initMu.Lock()
	defer idx.initMu.Unlock()
	if idx.ready {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     idx.cfg.Dimension,
			"distance": distanceName(idx.cfg.Metric),
		},
	}
	if err := idx.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s", idx.cfg.Collection), body, nil); err != nil {
		return err
	}
	idx.ready = true
	return nil
}

func (idx *Index) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if len(r.Vector) != idx.cfg.Dimension {
			return fmt.Errorf("%w: got %d, index configured for %d",
				vectorstore.ErrDimensionMismatch, len(r.Vector), idx.cfg.Dimension)
		}
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]map[string]any, len(records))
	for i, r := range records {
		points[i] = map[string]any{
			"id":     idx.nextPointID(r.DocumentID),
			"vector": r.Vector,
			"payload": map[string]any{
				"document_id": r.DocumentID,
				"tag":         string(r.Tag),
				"text":        r.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return idx.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s/points?wait=true", idx.cfg.Collection), body, nil)
}

func (idx *Index) Search(ctx context.Context, vector []float32, filter vectorstore.Filter, topK int) ([]vectorstore.Passage, error) {
	if len(vector) != idx.cfg.Dimension {
		return nil, fmt.Errorf("%w: got %d, index configured for %d",
			vectorstore.ErrDimensionMismatch, len(vector), idx.cfg.Dimension)
	}
	if topK <= 0 {
		return nil, nil
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
		"filter":       qdrantFilter(filter),
	}
	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := idx.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/search", idx.cfg.Collection), req, &resp)
	if err != nil {
		return nil, err
	}

	passages := make([]vectorstore.Passage, 0, len(resp.Result))
	for _, r := range resp.Result {
		p := vectorstore.Passage{Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			p.Text = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			p.DocumentID = v
		}
		passages = append(passages, p)
	}
	return passages, nil
}

func (idx *Index) Delete(ctx context.Context, filter vectorstore.Filter) error {
	if err := idx.ensureCollection(ctx); err != nil {
		return err
	}
	body := map[string]any{"filter": qdrantFilter(filter)}
	return idx.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/delete?wait=true", idx.cfg.Collection), body, nil)
}

func qdrantFilter(f vectorstore.Filter) map[string]any {
	must := []map[string]any{
		{"key": "tag", "match": map[string]any{"value": string(f.Tag)}},
	}
	if len(f.DocumentIDs) > 0 {
		must = append(must, map[string]any{
			"key": "document_id", "match": map[string]any{"any": f.DocumentIDs},
		})
	}
	return map[string]any{"must": must}
}

// nextPointID derives a fresh numeric point id. Duplicate upserts of the
// same chunk must land as distinct points, so the id is never derived from
// content alone.
func (idx *Index) nextPointID(documentID string) uint64 {
	idx.idMu.Lock()
	idx.idSeq++
	seq := idx.idSeq
	idx.idMu.Unlock()

	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d:%d", documentID, time.Now().UnixNano(), seq)
	return h.Sum64()
}

func distanceName(metric string) string {
	switch metric {
	case "dot":
		return "Dot"
	case "euclidean":
		return "Euclid"
	default:
		return "Cosine"
	}
}

func (idx *Index) doJSON(ctx context.Context, method, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal qdrant request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, idx.cfg.URL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build qdrant request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idx.cfg.APIKey != "" {
		req.Header.Set("api-key", idx.cfg.APIKey)
	}

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vectorstore.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, path, resp.Status, string(raw))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode qdrant response failed: %w", err)
		}
	}
	return nil
}
