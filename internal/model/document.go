package model

import "time"

// Document is one uploaded artifact in the registry. UUID is the hex
// SHA-256 of the uploaded bytes, so the same content always maps to the
// same id; it also scopes every chunk the document owns in the vector
// index. JSON field names match the upload API payload.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UUID        string    `gorm:"size:64;uniqueIndex;not null" json:"uuid"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	ContentType string    `gorm:"size:128" json:"filetype"`
	ObjectKey   string    `gorm:"size:320" json:"path"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"date"`
}
