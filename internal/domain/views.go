package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Read-side assembly shapes. These are presentation views only; nothing here
// is persisted.

// ProcedureEntry is one procedure with the entities that currently have at
// least one graph version under it.
type ProcedureEntry struct {
	ProcedureID   uuid.UUID `json:"procedure_id"`
	ProcedureName string    `json:"procedure_name"`
	Entities      []string  `json:"entities"`
}

// ProceduresByDocument groups the listing endpoint's output by source document.
type ProceduresByDocument struct {
	DocumentID      uuid.UUID        `json:"document_id"`
	DocumentSpec    string           `json:"document_spec"`
	DocumentVersion string           `json:"document_version"`
	DocumentRelease int              `json:"document_release"`
	Procedures      []ProcedureEntry `json:"document_procedures"`
}

// GraphDetail merges a GraphVersion with its procedure/document context for
// the "get latest" response.
type GraphDetail struct {
	DocumentID      uuid.UUID `json:"document_id"`
	DocumentSpec    string    `json:"document_spec"`
	DocumentVersion string    `json:"document_version"`
	DocumentRelease int       `json:"document_release"`

	ProcedureID   uuid.UUID `json:"procedure_id"`
	ProcedureName string    `json:"procedure_name"`
	ExtractedAt   time.Time `json:"extracted_at"`

	GraphID          uuid.UUID      `json:"graph_id"`
	Entity           string         `json:"entity"`
	Version          int            `json:"version"`
	Graph            datatypes.JSON `json:"graph"`
	ModelName        string         `json:"model_name"`
	Accuracy         float64        `json:"accuracy"`
	ExtractionMethod string         `json:"extraction_method"`
	Status           string         `json:"status"`
	CommitTitle      string         `json:"commit_title"`
	CommitMessage    string         `json:"commit_message"`
	References       datatypes.JSON `json:"references,omitempty"`
	ContextMarkdown  string         `json:"context_markdown"`
	CreatedAt        time.Time      `json:"created_at"`
}

// VersionSummary is the brief per-version shape for history listings.
type VersionSummary struct {
	GraphID       uuid.UUID `json:"graph_id"`
	Version       int       `json:"version"`
	CommitTitle   string    `json:"commit_title"`
	CommitMessage string    `json:"commit_message"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeleteResult reports the outcome of a lineage deletion.
type DeleteResult struct {
	DeletedCount     int  `json:"deleted_count"`
	ProcedureRemoved bool `json:"procedure_removed"`
}
