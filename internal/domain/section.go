package domain

import (
	"time"

	"github.com/google/uuid"
)

// Section is one heading-scoped slice of a source document, kept so the read
// side can rebuild context markdown for a procedure. Path is a dotted
// materialized path ("5.3.5.1" stored as "5_3_5_1" style tokens are fine as
// long as prefixes nest); descendants are matched by prefix.
type Section struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_section_document_path" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"document,omitempty"`

	Heading string `gorm:"column:heading;not null;index" json:"heading"`
	Level   int    `gorm:"column:level;not null" json:"level"`
	Path    string `gorm:"column:path;not null;uniqueIndex:idx_section_document_path" json:"path"`
	Content string `gorm:"column:content;type:text" json:"content"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Section) TableName() string { return "section" }
