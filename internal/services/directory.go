package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/data/dberr"
	"github.com/specgraph/fgp-backend/internal/data/repos"
	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/domain/storeerr"
	"github.com/specgraph/fgp-backend/internal/platform/dbctx"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

// DirectoryService owns procedure identity: it is the only component that
// creates Procedure (and Document) rows, and the only one that removes a
// Procedure once its last lineage is gone. The ledger calls DeleteIfEmpty
// inside its own delete transaction.
type DirectoryService interface {
	ResolveOrCreate(dbc dbctx.Context, ref types.DocumentRef, name string, topSections datatypes.JSON) (*types.Procedure, error)
	DeleteIfEmpty(dbc dbctx.Context, procedureID uuid.UUID) (bool, error)
}

type directoryService struct {
	db           *gorm.DB
	log          *logger.Logger
	documentRepo repos.DocumentRepo
	procRepo     repos.ProcedureRepo
	graphRepo    repos.GraphVersionRepo
}

func NewDirectoryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documentRepo repos.DocumentRepo,
	procRepo repos.ProcedureRepo,
	graphRepo repos.GraphVersionRepo,
) DirectoryService {
	return &directoryService{
		db:           db,
		log:          baseLog.With("service", "DirectoryService"),
		documentRepo: documentRepo,
		procRepo:     procRepo,
		graphRepo:    graphRepo,
	}
}

// ResolveOrCreate maps (document ref, procedure name) to a Procedure row,
// creating the document and/or procedure when absent. Both creations are
// conditional inserts against uniqueness constraints (ON CONFLICT DO NOTHING
// followed by a lookup), never read-then-write, so concurrent first-inserts
// for the same pair converge on one row.
func (s *directoryService) ResolveOrCreate(dbc dbctx.Context, ref types.DocumentRef, name string, topSections datatypes.JSON) (*types.Procedure, error) {
	const op = "DirectoryService.ResolveOrCreate"

	name = strings.TrimSpace(name)
	if strings.TrimSpace(ref.Spec) == "" || name == "" {
		return nil, storeerr.New(storeerr.CodeValidation, op, "document spec and procedure name are required", nil)
	}

	doc := &types.Document{Spec: ref.Spec, Version: ref.Version, Release: ref.Release}
	created, err := s.documentRepo.CreateIfAbsent(dbc, doc)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if !created {
		doc, err = s.documentRepo.GetByRef(dbc, ref)
		if err != nil {
			return nil, dberr.Map(op, err)
		}
		if doc == nil {
			return nil, storeerr.New(storeerr.CodeInternal, op,
				fmt.Sprintf("document %s/%s lost between upsert and lookup", ref.Spec, ref.Version), nil)
		}
	} else {
		s.log.Info("Created document", "spec", ref.Spec, "version", ref.Version, "release", ref.Release)
	}

	proc := &types.Procedure{DocumentID: doc.ID, Name: name, RetrievedTopSections: topSections}
	created, err = s.procRepo.CreateIfAbsent(dbc, proc)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if created {
		s.log.Info("Created procedure", "procedure_id", proc.ID.String(), "name", name, "spec", ref.Spec)
		return proc, nil
	}

	proc, err = s.procRepo.GetByDocumentAndName(dbc, doc.ID, name)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if proc == nil {
		return nil, storeerr.New(storeerr.CodeInternal, op,
			fmt.Sprintf("procedure %q lost between upsert and lookup", name), nil)
	}
	return proc, nil
}

// DeleteIfEmpty removes the procedure row only when no graph version under
// any entity still references it. Must run inside the caller's transaction so
// a concurrent reader never observes an empty-but-present procedure.
func (s *directoryService) DeleteIfEmpty(dbc dbctx.Context, procedureID uuid.UUID) (bool, error) {
	const op = "DirectoryService.DeleteIfEmpty"

	if procedureID == uuid.Nil {
		return false, storeerr.New(storeerr.CodeValidation, op, "procedure id is required", nil)
	}
	n, err := s.graphRepo.CountByProcedure(dbc, procedureID)
	if err != nil {
		return false, dberr.Map(op, err)
	}
	if n > 0 {
		return false, nil
	}
	removed, err := s.procRepo.Delete(dbc, procedureID)
	if err != nil {
		return false, dberr.Map(op, err)
	}
	if removed {
		s.log.Info("Removed procedure with no remaining lineages", "procedure_id", procedureID.String())
	}
	return removed, nil
}
