package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a source specification reference (e.g. 3GPP TS 38.331 v16.1.0
// Rel-16). Rows are immutable once created; procedures point back at them.
type Document struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Spec    string    `gorm:"column:spec;not null;uniqueIndex:idx_document_ref" json:"spec"`
	Version string    `gorm:"column:version;not null;uniqueIndex:idx_document_ref" json:"version"`
	Release int       `gorm:"column:release;not null;uniqueIndex:idx_document_ref" json:"release"`

	// Table of contents in markdown form, handed over by the ingestion pipeline.
	TOC string `gorm:"column:toc;type:text" json:"toc,omitempty"`

	ExtractedAt time.Time `gorm:"column:extracted_at;not null;default:now()" json:"extracted_at"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Document) TableName() string { return "document" }

// DocumentRef identifies a Document by its natural key.
type DocumentRef struct {
	Spec    string `json:"spec"`
	Version string `json:"version"`
	Release int    `json:"release"`
}
