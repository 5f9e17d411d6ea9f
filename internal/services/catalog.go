package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
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

// CatalogService is the read-side facade: it assembles listing and detail
// responses from ledger + directory output. Stateless; every failure here is
// a downstream propagation.
type CatalogService interface {
	ListAll(ctx context.Context) ([]types.ProceduresByDocument, error)
	GetLatestDetail(ctx context.Context, procedureID uuid.UUID, entity string) (*types.GraphDetail, error)
	GetHistory(ctx context.Context, procedureID uuid.UUID, entity string) ([]types.VersionSummary, error)
	GetVersionDetail(ctx context.Context, procedureID uuid.UUID, entity string, graphID uuid.UUID) (*types.GraphVersion, error)
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	ledger       LedgerService
	documentRepo repos.DocumentRepo
	procRepo     repos.ProcedureRepo
	sectionRepo  repos.SectionRepo
	graphRepo    repos.GraphVersionRepo
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ledger LedgerService,
	documentRepo repos.DocumentRepo,
	procRepo repos.ProcedureRepo,
	sectionRepo repos.SectionRepo,
	graphRepo repos.GraphVersionRepo,
) CatalogService {
	return &catalogService{
		db:           db,
		log:          baseLog.With("service", "CatalogService"),
		ledger:       ledger,
		documentRepo: documentRepo,
		procRepo:     procRepo,
		sectionRepo:  sectionRepo,
		graphRepo:    graphRepo,
	}
}

// ListAll groups every procedure with its graph-bearing entities under its
// source document, ordered by (release, spec, version) then procedure name.
func (s *catalogService) ListAll(ctx context.Context) ([]types.ProceduresByDocument, error) {
	const op = "CatalogService.ListAll"

	procs, err := s.procRepo.ListAll(dbctx.New(ctx))
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if len(procs) == 0 {
		return []types.ProceduresByDocument{}, nil
	}

	docIDSet := make(map[uuid.UUID]struct{}, len(procs))
	procIDs := make([]uuid.UUID, 0, len(procs))
	for _, p := range procs {
		docIDSet[p.DocumentID] = struct{}{}
		procIDs = append(procIDs, p.ID)
	}
	docIDs := make([]uuid.UUID, 0, len(docIDSet))
	for id := range docIDSet {
		docIDs = append(docIDs, id)
	}

	docs, err := s.documentRepo.GetByIDs(dbctx.New(ctx), docIDs)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	entities, err := s.graphRepo.EntitiesByProcedureIDs(dbctx.New(ctx), procIDs)
	if err != nil {
		return nil, dberr.Map(op, err)
	}

	docByID := make(map[uuid.UUID]*types.Document, len(docs))
	for _, d := range docs {
		docByID[d.ID] = d
	}

	grouped := make(map[uuid.UUID]*types.ProceduresByDocument, len(docs))
	for _, p := range procs {
		ents := entities[p.ID]
		if len(ents) == 0 {
			// Invariant: a procedure without versions must not exist. Surface
			// it in the log but keep the listing usable.
			s.log.Warn("Procedure with no graph versions in listing", "procedure_id", p.ID.String())
			continue
		}
		doc := docByID[p.DocumentID]
		if doc == nil {
			return nil, storeerr.New(storeerr.CodeInternal, op,
				fmt.Sprintf("procedure %s references unknown document %s", p.ID, p.DocumentID), nil)
		}
		entry, ok := grouped[doc.ID]
		if !ok {
			entry = &types.ProceduresByDocument{
				DocumentID:      doc.ID,
				DocumentSpec:    doc.Spec,
				DocumentVersion: doc.Version,
				DocumentRelease: doc.Release,
			}
			grouped[doc.ID] = entry
		}
		entry.Procedures = append(entry.Procedures, types.ProcedureEntry{
			ProcedureID:   p.ID,
			ProcedureName: p.Name,
			Entities:      ents,
		})
	}

	out := make([]types.ProceduresByDocument, 0, len(grouped))
	for _, entry := range grouped {
		sort.Slice(entry.Procedures, func(i, j int) bool {
			return entry.Procedures[i].ProcedureName < entry.Procedures[j].ProcedureName
		})
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentRelease != out[j].DocumentRelease {
			return out[i].DocumentRelease < out[j].DocumentRelease
		}
		if out[i].DocumentSpec != out[j].DocumentSpec {
			return out[i].DocumentSpec < out[j].DocumentSpec
		}
		return out[i].DocumentVersion < out[j].DocumentVersion
	})
	return out, nil
}

// GetLatestDetail joins the lineage's latest version with its procedure and
// document, and assembles context markdown from the document's stored
// sections. When the document has no section rows (older ingests), the
// version's own stored context carries the response.
func (s *catalogService) GetLatestDetail(ctx context.Context, procedureID uuid.UUID, entity string) (*types.GraphDetail, error) {
	const op = "CatalogService.GetLatestDetail"

	gv, err := s.ledger.GetLatest(ctx, procedureID, entity)
	if err != nil {
		return nil, err
	}

	dbc := dbctx.New(ctx)
	proc, err := s.procRepo.GetByID(dbc, procedureID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if proc == nil {
		return nil, storeerr.New(storeerr.CodeInternal, op,
			fmt.Sprintf("graph version %s references unknown procedure %s", gv.ID, procedureID), nil)
	}
	doc, err := s.documentRepo.GetByID(dbc, proc.DocumentID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if doc == nil {
		return nil, storeerr.New(storeerr.CodeInternal, op,
			fmt.Sprintf("procedure %s references unknown document %s", proc.ID, proc.DocumentID), nil)
	}

	contextMD, err := s.contextMarkdown(dbc, doc, proc, gv.ContextMarkdown)
	if err != nil {
		return nil, err
	}

	return &types.GraphDetail{
		DocumentID:      doc.ID,
		DocumentSpec:    doc.Spec,
		DocumentVersion: doc.Version,
		DocumentRelease: doc.Release,

		ProcedureID:   proc.ID,
		ProcedureName: proc.Name,
		ExtractedAt:   proc.ExtractedAt,

		GraphID:          gv.ID,
		Entity:           gv.Entity,
		Version:          gv.Version,
		Graph:            gv.Graph,
		ModelName:        gv.ModelName,
		Accuracy:         gv.Accuracy,
		ExtractionMethod: gv.ExtractionMethod,
		Status:           gv.Status,
		CommitTitle:      gv.CommitTitle,
		CommitMessage:    gv.CommitMessage,
		References:       gv.References,
		ContextMarkdown:  contextMD,
		CreatedAt:        gv.CreatedAt,
	}, nil
}

func (s *catalogService) GetHistory(ctx context.Context, procedureID uuid.UUID, entity string) ([]types.VersionSummary, error) {
	return s.ledger.GetHistory(ctx, procedureID, entity)
}

// GetVersionDetail deep-links one historical version. The id lookup is scoped
// to the lineage in the path so a graph id cannot be read through another
// procedure's URL.
func (s *catalogService) GetVersionDetail(ctx context.Context, procedureID uuid.UUID, entity string, graphID uuid.UUID) (*types.GraphVersion, error) {
	const op = "CatalogService.GetVersionDetail"

	gv, err := s.ledger.GetByID(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if gv.ProcedureID != procedureID || gv.EntityLower != strings.ToLower(strings.TrimSpace(entity)) {
		return nil, storeerr.New(storeerr.CodeNotFound, op,
			fmt.Sprintf("graph version %s does not belong to procedure %s entity %q", graphID, procedureID, entity), nil)
	}
	return gv, nil
}

func (s *catalogService) contextMarkdown(dbc dbctx.Context, doc *types.Document, proc *types.Procedure, fallback string) (string, error) {
	const op = "CatalogService.contextMarkdown"

	patterns := decodeStringList(proc.RetrievedTopSections)
	if len(patterns) == 0 {
		return fallback, nil
	}

	matched, err := s.sectionRepo.MatchHeadings(dbc, doc.ID, patterns)
	if err != nil {
		return "", dberr.Map(op, err)
	}
	if len(matched) == 0 {
		s.log.Debug("No stored sections matched, serving stored context",
			"document_id", doc.ID.String(),
			"procedure_id", proc.ID.String(),
		)
		return fallback, nil
	}

	paths := make([]string, 0, len(matched))
	for _, sec := range matched {
		paths = append(paths, sec.Path)
	}
	contents, err := s.sectionRepo.ListByPathPrefixes(dbc, doc.ID, paths)
	if err != nil {
		return "", dberr.Map(op, err)
	}
	if len(contents) == 0 {
		return fallback, nil
	}
	return RenderSectionsMarkdown(doc.Spec, contents), nil
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	filtered := out[:0]
	for _, s := range out {
		if strings.TrimSpace(s) != "" {
			filtered = append(filtered, strings.TrimSpace(s))
		}
	}
	return filtered
}
