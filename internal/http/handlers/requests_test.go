package handlers

import (
	"encoding/json"
	"testing"
)

func validInsertBody() insertVersionRequest {
	model := "m1"
	accuracy := 0.9
	method := "llm"
	return insertVersionRequest{
		Graph:       json.RawMessage(`{"states":[]}`),
		CommitTitle: "initial extraction",
		Status:      "draft",
		Metadata: &metadataOverridesBody{
			ModelName:        &model,
			Accuracy:         &accuracy,
			ExtractionMethod: &method,
		},
	}
}

func TestInsertVersionRequestValid(t *testing.T) {
	if err := validInsertBody().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestInsertVersionRequestRejectsMissingGraph(t *testing.T) {
	req := validInsertBody()
	req.Graph = nil
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing graph")
	}
}

func TestInsertVersionRequestRejectsMalformedGraph(t *testing.T) {
	req := validInsertBody()
	req.Graph = json.RawMessage(`{"states":`)
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for malformed graph JSON")
	}
}

func TestInsertVersionRequestRejectsMissingCommitTitle(t *testing.T) {
	req := validInsertBody()
	req.CommitTitle = ""
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing commit title")
	}
}

func TestInsertVersionRequestRejectsUnknownStatus(t *testing.T) {
	req := validInsertBody()
	req.Status = "shipped"
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestInsertVersionRequestAccuracyBounds(t *testing.T) {
	req := validInsertBody()
	bad := 1.2
	req.Metadata.Accuracy = &bad
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for accuracy above 1")
	}

	zero := 0.0
	req.Metadata.Accuracy = &zero
	if err := req.Validate(); err != nil {
		t.Fatalf("accuracy 0 should be allowed: %v", err)
	}
}

func TestCreateProcedureRequestValid(t *testing.T) {
	req := createProcedureRequest{
		insertVersionRequest: validInsertBody(),
		Document:             documentRefBody{Spec: "TS 23.502", Version: "17.5.0", Release: 17},
		ProcedureName:        "PDU Session Establishment",
		Entity:               "SMF",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCreateProcedureRequestRejectsMissingDocument(t *testing.T) {
	req := createProcedureRequest{
		insertVersionRequest: validInsertBody(),
		ProcedureName:        "PDU Session Establishment",
		Entity:               "SMF",
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing document reference")
	}
}

func TestCreateProcedureRequestRejectsMissingEntity(t *testing.T) {
	req := createProcedureRequest{
		insertVersionRequest: validInsertBody(),
		Document:             documentRefBody{Spec: "TS 23.502", Version: "17.5.0", Release: 17},
		ProcedureName:        "PDU Session Establishment",
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing entity")
	}
}
