package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Procedure groups the graph lineages extracted for one named procedure of a
// document. A row exists only while at least one GraphVersion references some
// entity under it; the ledger's delete path removes it with its last lineage.
type Procedure struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_procedure_document_name" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"document,omitempty"`

	Name string `gorm:"column:name;not null;uniqueIndex:idx_procedure_document_name" json:"name"`

	// Section headings the extractor ranked as most relevant for this
	// procedure; the seed for context markdown assembly.
	RetrievedTopSections datatypes.JSON `gorm:"column:retrieved_top_sections;type:jsonb" json:"retrieved_top_sections,omitempty"`

	ExtractedAt time.Time `gorm:"column:extracted_at;not null;default:now()" json:"extracted_at"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Procedure) TableName() string { return "procedure" }
