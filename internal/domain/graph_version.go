package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GraphVersion is the atomic unit of storage: one immutable version of the
// machine-extracted FSM graph for a (procedure, entity) lineage. Edits never
// touch an existing row; a new row with version = max+1 is inserted instead.
//
// EntityLower is a stored lowered copy of Entity. Lineage lookups and the
// (procedure_id, entity_lower, version) uniqueness constraint go through it so
// "UE" and "ue" address the same lineage while the first insert's spelling is
// preserved for display.
type GraphVersion struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"graph_id"`

	// RESTRICT, not CASCADE: a procedure delete racing a version insert must
	// fail at the constraint instead of silently removing the fresh row.
	ProcedureID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_graph_lineage_version" json:"procedure_id"`
	Procedure   *Procedure `gorm:"constraint:OnDelete:RESTRICT;foreignKey:ProcedureID;references:ID" json:"procedure,omitempty"`

	Entity      string `gorm:"column:entity;not null" json:"entity"`
	EntityLower string `gorm:"column:entity_lower;not null;index;uniqueIndex:idx_graph_lineage_version" json:"-"`
	Version     int    `gorm:"column:version;not null;uniqueIndex:idx_graph_lineage_version" json:"version"`

	// Opaque FSM graph payload; the store never parses or validates it.
	Graph datatypes.JSON `gorm:"column:graph;type:jsonb;not null" json:"graph"`

	ContextMarkdown string         `gorm:"column:context_markdown;type:text" json:"context_markdown,omitempty"`
	References      datatypes.JSON `gorm:"column:references;type:jsonb" json:"references,omitempty"`

	// Extraction metadata: inherited from the prior latest version unless the
	// insert explicitly overrides a field.
	ModelName        string  `gorm:"column:model_name;not null" json:"model_name"`
	Accuracy         float64 `gorm:"column:accuracy;not null" json:"accuracy"`
	ExtractionMethod string  `gorm:"column:extraction_method;not null" json:"extraction_method"`

	// Commit metadata: supplied per insert, never inherited.
	CommitTitle   string `gorm:"column:commit_title;not null" json:"commit_title"`
	CommitMessage string `gorm:"column:commit_message;type:text" json:"commit_message"`
	Status        string `gorm:"column:status;not null;default:'draft'" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (GraphVersion) TableName() string { return "graph" }

// ExtractionMetadata carries the provenance fields as one unit.
type ExtractionMetadata struct {
	ModelName        string  `json:"model_name"`
	Accuracy         float64 `json:"accuracy"`
	ExtractionMethod string  `json:"extraction_method"`
}

// MetadataOverrides is the per-field partial override for extraction metadata
// on insert. A nil field means "inherit from the prior latest version".
type MetadataOverrides struct {
	ModelName        *string  `json:"model_name,omitempty"`
	Accuracy         *float64 `json:"accuracy,omitempty"`
	ExtractionMethod *string  `json:"extraction_method,omitempty"`
}

func (g *GraphVersion) Metadata() ExtractionMetadata {
	return ExtractionMetadata{
		ModelName:        g.ModelName,
		Accuracy:         g.Accuracy,
		ExtractionMethod: g.ExtractionMethod,
	}
}
