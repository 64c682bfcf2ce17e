package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ocrqa/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts the registry row. Re-uploading the same content produces
// the same UUID, so conflicts on it are ignored rather than failed.
func (r *DocumentRepository) Create(doc *model.Document) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoNothing: true,
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByUUID(uuid string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("uuid = ?", uuid).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) DeleteByUUID(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
