// Package blobstore persists uploaded artifacts in a local bucket. Only
// the upload boundary touches it; the RAG core never reads blobs itself
// (the transcript comes from the caller), except for the PDF transcript
// fallback at the OCR endpoint.
package blobstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is idempotent: removing a missing key is a no-op.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}
