package services

import (
	"context"
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

// defaultInsertRetries bounds the recompute-and-retry loop for version-number
// races. Each retry means another writer just claimed the number we computed,
// so a couple of rounds is enough under sane contention.
const defaultInsertRetries = 3

// InsertVersionInput carries one edit against an existing lineage (or the
// first version of a new entity under an existing procedure).
type InsertVersionInput struct {
	ProcedureID     uuid.UUID
	Entity          string
	Graph           datatypes.JSON
	ContextMarkdown string
	References      datatypes.JSON
	CommitTitle     string
	CommitMessage   string
	Status          string
	Overrides       *types.MetadataOverrides
}

// InitialInsertInput is the ingestion handoff: it carries the document
// reference and procedure name so the directory can resolve or create both
// before version 1 is written.
type InitialInsertInput struct {
	Document             types.DocumentRef
	ProcedureName        string
	RetrievedTopSections datatypes.JSON
	Version              InsertVersionInput // ProcedureID filled in after resolution
}

// LedgerService owns the lifecycle of graph versions: it allocates version
// numbers, resolves "latest", and cascades procedure removal when the last
// lineage is deleted.
type LedgerService interface {
	GetLatest(ctx context.Context, procedureID uuid.UUID, entity string) (*types.GraphVersion, error)
	GetHistory(ctx context.Context, procedureID uuid.UUID, entity string) ([]types.VersionSummary, error)
	GetByID(ctx context.Context, graphID uuid.UUID) (*types.GraphVersion, error)
	InsertNewVersion(ctx context.Context, in InsertVersionInput) (*types.GraphVersion, error)
	InsertInitial(ctx context.Context, in InitialInsertInput) (*types.GraphVersion, error)
	DeleteLineage(ctx context.Context, procedureID uuid.UUID, entity string) (types.DeleteResult, error)
}

type ledgerService struct {
	db        *gorm.DB
	log       *logger.Logger
	procRepo  repos.ProcedureRepo
	graphRepo repos.GraphVersionRepo
	directory DirectoryService
	retries   int
}

func NewLedgerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	procRepo repos.ProcedureRepo,
	graphRepo repos.GraphVersionRepo,
	directory DirectoryService,
	retries int,
) LedgerService {
	if retries <= 0 {
		retries = defaultInsertRetries
	}
	return &ledgerService{
		db:        db,
		log:       baseLog.With("service", "LedgerService"),
		procRepo:  procRepo,
		graphRepo: graphRepo,
		directory: directory,
		retries:   retries,
	}
}

func (s *ledgerService) GetLatest(ctx context.Context, procedureID uuid.UUID, entity string) (*types.GraphVersion, error) {
	const op = "LedgerService.GetLatest"

	row, err := s.graphRepo.Latest(dbctx.New(ctx), procedureID, entity)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if row == nil {
		return nil, lineageNotFound(op, procedureID, entity)
	}
	return row, nil
}

// GetHistory lists every version of the lineage, oldest first. An unknown
// procedure is NotFound; a known procedure with no versions for this entity
// yields an empty list.
func (s *ledgerService) GetHistory(ctx context.Context, procedureID uuid.UUID, entity string) ([]types.VersionSummary, error) {
	const op = "LedgerService.GetHistory"

	dbc := dbctx.New(ctx)
	proc, err := s.procRepo.GetByID(dbc, procedureID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if proc == nil {
		return nil, storeerr.New(storeerr.CodeNotFound, op,
			fmt.Sprintf("procedure %s not found", procedureID), nil)
	}

	rows, err := s.graphRepo.ListByLineage(dbc, procedureID, entity)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	out := make([]types.VersionSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.VersionSummary{
			GraphID:       row.ID,
			Version:       row.Version,
			CommitTitle:   row.CommitTitle,
			CommitMessage: row.CommitMessage,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

func (s *ledgerService) GetByID(ctx context.Context, graphID uuid.UUID) (*types.GraphVersion, error) {
	const op = "LedgerService.GetByID"

	row, err := s.graphRepo.GetByID(dbctx.New(ctx), graphID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if row == nil {
		return nil, storeerr.New(storeerr.CodeNotFound, op,
			fmt.Sprintf("graph version %s not found", graphID), nil)
	}
	return row, nil
}

// InsertNewVersion appends a version to a lineage. The read-compute-write
// sequence runs in one transaction; when a concurrent insert claims the same
// version number first, the uniqueness constraint on (procedure_id,
// entity_lower, version) rejects ours and the whole sequence retries with a
// fresh read.
func (s *ledgerService) InsertNewVersion(ctx context.Context, in InsertVersionInput) (*types.GraphVersion, error) {
	const op = "LedgerService.InsertNewVersion"

	if err := s.checkInsertInput(op, in); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		var created *types.GraphVersion
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.WithTx(ctx, tx)

			// Existence check inside the transaction: a delete committing
			// after a pre-transaction check would otherwise let this insert
			// write a version for a procedure that no longer exists. The
			// foreign key on procedure_id backstops the race the check
			// cannot see.
			proc, txErr := s.procRepo.GetByID(dbc, in.ProcedureID)
			if txErr != nil {
				return txErr
			}
			if proc == nil {
				return storeerr.New(storeerr.CodeNotFound, op,
					fmt.Sprintf("procedure %s not found", in.ProcedureID), nil)
			}

			created, txErr = s.insertOnce(dbc, op, in)
			return txErr
		})
		if err == nil {
			return created, nil
		}
		mapped := dberr.Map(op, err)
		if !storeerr.IsCode(mapped, storeerr.CodeConflict) {
			return nil, mapped
		}
		lastErr = mapped
		s.log.Warn("Version number race, retrying insert",
			"procedure_id", in.ProcedureID.String(),
			"entity", in.Entity,
			"attempt", attempt,
		)
	}
	return nil, storeerr.New(storeerr.CodeConflict, op,
		fmt.Sprintf("insert for (%s, %s) kept losing version races", in.ProcedureID, in.Entity), lastErr)
}

// InsertInitial is the first-insert path for a brand-new (document, procedure)
// pair: directory resolution and the version-1 write share one transaction so
// a failed insert never leaves an empty procedure behind.
func (s *ledgerService) InsertInitial(ctx context.Context, in InitialInsertInput) (*types.GraphVersion, error) {
	const op = "LedgerService.InsertInitial"

	if err := s.checkInsertInput(op, in.Version); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProcedureName) == "" {
		return nil, storeerr.New(storeerr.CodeValidation, op, "procedure name is required", nil)
	}

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		var created *types.GraphVersion
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.WithTx(ctx, tx)
			proc, txErr := s.directory.ResolveOrCreate(dbc, in.Document, in.ProcedureName, in.RetrievedTopSections)
			if txErr != nil {
				return txErr
			}
			version := in.Version
			version.ProcedureID = proc.ID
			created, txErr = s.insertOnce(dbc, op, version)
			return txErr
		})
		if err == nil {
			return created, nil
		}
		mapped := dberr.Map(op, err)
		if !storeerr.IsCode(mapped, storeerr.CodeConflict) {
			return nil, mapped
		}
		lastErr = mapped
		s.log.Warn("Conflict during initial insert, retrying",
			"procedure_name", in.ProcedureName,
			"entity", in.Version.Entity,
			"attempt", attempt,
		)
	}
	return nil, storeerr.New(storeerr.CodeConflict, op,
		fmt.Sprintf("initial insert for (%s, %s) kept losing races", in.ProcedureName, in.Version.Entity), lastErr)
}

// insertOnce performs one read-compute-write pass inside the caller's
// transaction and returns the raw driver error on constraint violation so the
// caller can decide whether to retry.
func (s *ledgerService) insertOnce(dbc dbctx.Context, op string, in InsertVersionInput) (*types.GraphVersion, error) {
	latest, err := s.graphRepo.Latest(dbc, in.ProcedureID, in.Entity)
	if err != nil {
		return nil, err
	}

	next := 1
	entity := strings.TrimSpace(in.Entity)
	var prior *types.ExtractionMetadata
	if latest != nil {
		next = latest.Version + 1
		entity = latest.Entity // keep the lineage's stored spelling
		m := latest.Metadata()
		prior = &m
	}

	meta, err := ResolveMetadata(prior, in.Overrides)
	if err != nil {
		return nil, storeerr.New(storeerr.CodeValidation, op, err.Error(), err)
	}

	row := &types.GraphVersion{
		ProcedureID:      in.ProcedureID,
		Entity:           entity,
		Version:          next,
		Graph:            in.Graph,
		ContextMarkdown:  in.ContextMarkdown,
		References:       in.References,
		ModelName:        meta.ModelName,
		Accuracy:         meta.Accuracy,
		ExtractionMethod: meta.ExtractionMethod,
		CommitTitle:      strings.TrimSpace(in.CommitTitle),
		CommitMessage:    in.CommitMessage,
		Status:           strings.TrimSpace(in.Status),
	}
	if err := s.graphRepo.Create(dbc, row); err != nil {
		return nil, err
	}
	s.log.Info("Inserted graph version",
		"graph_id", row.ID.String(),
		"procedure_id", in.ProcedureID.String(),
		"entity", entity,
		"version", next,
	)
	return row, nil
}

// DeleteLineage removes every version of the lineage and, when that leaves
// the procedure without any lineage, the procedure row too, in one atomic
// unit. Deleting a lineage that never existed is NotFound, not a zero-count
// success.
func (s *ledgerService) DeleteLineage(ctx context.Context, procedureID uuid.UUID, entity string) (types.DeleteResult, error) {
	const op = "LedgerService.DeleteLineage"

	var out types.DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)

		// Lock the procedure row first. Two deletes on different entities of
		// the same procedure would otherwise each count the other's
		// not-yet-committed deletions as live rows, both skip the cascade and
		// strand an empty procedure.
		proc, err := s.procRepo.GetByIDForUpdate(dbc, procedureID)
		if err != nil {
			return err
		}
		if proc == nil {
			return lineageNotFound(op, procedureID, entity)
		}

		deleted, err := s.graphRepo.DeleteByLineage(dbc, procedureID, entity)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return lineageNotFound(op, procedureID, entity)
		}
		out.DeletedCount = int(deleted)

		removed, err := s.directory.DeleteIfEmpty(dbc, procedureID)
		if err != nil {
			return err
		}
		out.ProcedureRemoved = removed
		return nil
	})
	if err != nil {
		return types.DeleteResult{}, dberr.Map(op, err)
	}
	s.log.Info("Deleted lineage",
		"procedure_id", procedureID.String(),
		"entity", entity,
		"deleted_count", out.DeletedCount,
		"procedure_removed", out.ProcedureRemoved,
	)
	return out, nil
}

func (s *ledgerService) checkInsertInput(op string, in InsertVersionInput) error {
	switch {
	case strings.TrimSpace(in.Entity) == "":
		return storeerr.New(storeerr.CodeValidation, op, "entity is required", nil)
	case len(in.Graph) == 0:
		return storeerr.New(storeerr.CodeValidation, op, "graph payload is required", nil)
	case strings.TrimSpace(in.CommitTitle) == "":
		return storeerr.New(storeerr.CodeValidation, op, "commit title is required", nil)
	}
	return nil
}

// ResolveMetadata applies the per-field fallback rule: an override field wins
// when present, otherwise the prior latest version's value carries over. With
// no prior version every field must be supplied; silently defaulting
// provenance would fabricate it. A present-but-blank string override is an
// error, never an erase: omitting the field is the only way to keep the
// inherited value.
func ResolveMetadata(prior *types.ExtractionMetadata, ov *types.MetadataOverrides) (types.ExtractionMetadata, error) {
	var out types.ExtractionMetadata
	if prior != nil {
		out = *prior
	}
	if ov != nil {
		if ov.ModelName != nil {
			v := strings.TrimSpace(*ov.ModelName)
			if v == "" {
				return types.ExtractionMetadata{}, fmt.Errorf("model_name override must not be blank")
			}
			out.ModelName = v
		}
		if ov.Accuracy != nil {
			out.Accuracy = *ov.Accuracy
		}
		if ov.ExtractionMethod != nil {
			v := strings.TrimSpace(*ov.ExtractionMethod)
			if v == "" {
				return types.ExtractionMetadata{}, fmt.Errorf("extraction_method override must not be blank")
			}
			out.ExtractionMethod = v
		}
	}
	if prior == nil {
		var missing []string
		if ov == nil || ov.ModelName == nil {
			missing = append(missing, "model_name")
		}
		if ov == nil || ov.Accuracy == nil {
			missing = append(missing, "accuracy")
		}
		if ov == nil || ov.ExtractionMethod == nil {
			missing = append(missing, "extraction_method")
		}
		if len(missing) > 0 {
			return types.ExtractionMetadata{}, fmt.Errorf(
				"first version of a lineage requires full extraction metadata, missing: %s",
				strings.Join(missing, ", "))
		}
	}
	return out, nil
}

func lineageNotFound(op string, procedureID uuid.UUID, entity string) error {
	return storeerr.New(storeerr.CodeNotFound, op,
		fmt.Sprintf("no graph versions for procedure %s entity %q", procedureID, entity), nil)
}
