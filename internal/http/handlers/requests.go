package handlers

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	types "github.com/specgraph/fgp-backend/internal/domain"
)

// graphStatuses are the commit statuses the review workflow understands.
var graphStatuses = []interface{}{"draft", "verified", "rejected"}

type metadataOverridesBody struct {
	ModelName        *string  `json:"model_name"`
	Accuracy         *float64 `json:"accuracy"`
	ExtractionMethod *string  `json:"extraction_method"`
}

func (m metadataOverridesBody) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Accuracy, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (m *metadataOverridesBody) toDomain() *types.MetadataOverrides {
	if m == nil {
		return nil
	}
	return &types.MetadataOverrides{
		ModelName:        m.ModelName,
		Accuracy:         m.Accuracy,
		ExtractionMethod: m.ExtractionMethod,
	}
}

type insertVersionRequest struct {
	Graph           json.RawMessage        `json:"graph"`
	ContextMarkdown string                 `json:"context_markdown"`
	References      []string               `json:"references"`
	CommitTitle     string                 `json:"commit_title"`
	CommitMessage   string                 `json:"commit_message"`
	Status          string                 `json:"status"`
	Metadata        *metadataOverridesBody `json:"metadata"`
}

func (r insertVersionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Graph, validation.Required, validation.By(validJSONPayload)),
		validation.Field(&r.CommitTitle, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.CommitMessage, validation.Length(0, 4000)),
		validation.Field(&r.Status, validation.In(graphStatuses...)),
		validation.Field(&r.Metadata),
	)
}

type documentRefBody struct {
	Spec    string `json:"spec"`
	Version string `json:"version"`
	Release int    `json:"release"`
}

func (d documentRefBody) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Spec, validation.Required),
		validation.Field(&d.Version, validation.Required),
		validation.Field(&d.Release, validation.Required, validation.Min(1)),
	)
}

// createProcedureRequest is the ingestion handoff: document reference,
// procedure name and the first graph version in one shot.
type createProcedureRequest struct {
	insertVersionRequest

	Document             documentRefBody `json:"document"`
	ProcedureName        string          `json:"procedure_name"`
	Entity               string          `json:"entity"`
	RetrievedTopSections []string        `json:"retrieved_top_sections"`
}

func (r createProcedureRequest) Validate() error {
	if err := r.insertVersionRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Document),
		validation.Field(&r.ProcedureName, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Entity, validation.Required, validation.Length(1, 100)),
	)
}

func validJSONPayload(value interface{}) error {
	raw, _ := value.(json.RawMessage)
	if len(raw) == 0 {
		return nil // Required handles absence
	}
	if !json.Valid(raw) {
		return errInvalidJSON
	}
	return nil
}

var errInvalidJSON = validation.NewError("validation_is_json", "must be valid JSON")
