package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"ocrqa/internal/model"
)

// DocumentCache is a cache-aside layer over the document registry so the
// hot lookup on the OCR and query paths skips MySQL.
type DocumentCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewDocumentCache(client *redisv9.Client, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DocumentCache{client: client, ttl: ttl}
}

func (c *DocumentCache) Get(ctx context.Context, uuid string) (*model.Document, bool, error) {
	raw, err := c.client.Get(ctx, c.key(uuid)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get document failed: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached document failed: %w", err)
	}
	return &doc, true, nil
}

func (c *DocumentCache) Set(ctx context.Context, doc model.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(doc.UUID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set document failed: %w", err)
	}
	return nil
}

func (c *DocumentCache) Delete(ctx context.Context, uuid string) error {
	if err := c.client.Del(ctx, c.key(uuid)).Err(); err != nil {
		return fmt.Errorf("redis delete document failed: %w", err)
	}
	return nil
}

func (c *DocumentCache) key(uuid string) string {
	return "document:meta:" + uuid
}
