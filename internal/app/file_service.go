package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"ocrqa/internal/model"
)

type blobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

type documentRecords interface {
	Create(doc *model.Document) error
	GetByUUID(uuid string) (*model.Document, error)
	List() ([]model.Document, error)
	DeleteByUUID(uuid string) error
}

type documentPublisher interface {
	Publish(ctx context.Context, doc model.Document) error
}

type documentCache interface {
	Get(ctx context.Context, uuid string) (*model.Document, bool, error)
	Set(ctx context.Context, doc model.Document) error
	Delete(ctx context.Context, uuid string) error
}

// FileService persists uploaded artifacts in the blob bucket and keeps the
// document registry. The registry row is persisted asynchronously through
// the queue; the blob write is synchronous because the document id is
// derived from the bytes and returned to the caller.
type FileService struct {
	blobs        blobStore
	repo         documentRecords
	publisher    documentPublisher
	cache        documentCache
	allowedTypes []string
}

func NewFileService(blobs blobStore, repo documentRecords, publisher documentPublisher, cache documentCache, allowedTypes []string) *FileService {
	return &FileService{
		blobs:        blobs,
		repo:         repo,
		publisher:    publisher,
		cache:        cache,
		allowedTypes: allowedTypes,
	}
}

// Upload stores the file and returns its registry record. The document id
// is the hex SHA-256 of the content, so re-uploading identical bytes yields
// the same id and overwrites the same blob key.
func (s *FileService) Upload(ctx context.Context, name, contentType string, data []byte) (*model.Document, error) {
	if !s.typeAllowed(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	sum := sha256.Sum256(data)
	uuid := hex.EncodeToString(sum[:])
	key := uuid + strings.ToLower(filepath.Ext(name))

	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("store blob failed: %w", err)
	}

	doc := model.Document{
		UUID:        uuid,
		Name:        name,
		ContentType: contentType,
		ObjectKey:   key,
		Size:        int64(len(data)),
	}
	if err := s.publisher.Publish(ctx, doc); err != nil {
		// Queue down: fall back to a synchronous registry write so the
		// upload is never acknowledged without a persisted record.
		log.Printf("publish document event failed, persisting directly: %v", err)
		if err := s.repo.Create(&doc); err != nil {
			return nil, err
		}
	}
	if err := s.cache.Set(ctx, doc); err != nil {
		log.Printf("cache document %s failed: %v", uuid, err)
	}
	return &doc, nil
}

// GetDocument resolves a registry record, cache first.
func (s *FileService) GetDocument(ctx context.Context, uuid string) (*model.Document, error) {
	doc, ok, err := s.cache.Get(ctx, uuid)
	if err != nil {
		log.Printf("cache lookup %s failed: %v", uuid, err)
	} else if ok {
		return doc, nil
	}
	doc, err = s.repo.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if err := s.cache.Set(ctx, *doc); err != nil {
		log.Printf("cache document %s failed: %v", uuid, err)
	}
	return doc, nil
}

// GetBlob returns the stored bytes and content type for a document.
func (s *FileService) GetBlob(ctx context.Context, uuid string) ([]byte, string, error) {
	doc, err := s.GetDocument(ctx, uuid)
	if err != nil {
		return nil, "", err
	}
	data, err := s.blobs.Get(ctx, doc.ObjectKey)
	if err != nil {
		return nil, "", err
	}
	return data, doc.ContentType, nil
}

func (s *FileService) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.repo.List()
}

// Delete removes the blob, the registry row, and the cache entry.
// Embedding deletion is the RAG service's concern; the boundary layer
// calls both.
func (s *FileService) Delete(ctx context.Context, uuid string) error {
	doc, err := s.GetDocument(ctx, uuid)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.ObjectKey); err != nil {
		return err
	}
	if err := s.repo.DeleteByUUID(uuid); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, uuid); err != nil {
		log.Printf("evict document %s failed: %v", uuid, err)
	}
	return nil
}

// AllowedTypes lists the accepted upload content types, for error payloads.
func (s *FileService) AllowedTypes() []string {
	return s.allowedTypes
}

func (s *FileService) typeAllowed(contentType string) bool {
	for _, t := range s.allowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}
