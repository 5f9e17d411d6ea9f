package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/http/response"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
	"github.com/specgraph/fgp-backend/internal/services"
)

// ProcedureHandler exposes the /procedures surface: catalog reads, version
// inserts and lineage deletion.
type ProcedureHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
	ledger  services.LedgerService
}

func NewProcedureHandler(baseLog *logger.Logger, catalog services.CatalogService, ledger services.LedgerService) *ProcedureHandler {
	return &ProcedureHandler{
		log:     baseLog.With("handler", "ProcedureHandler"),
		catalog: catalog,
		ledger:  ledger,
	}
}

// List returns every procedure grouped under its source document.
func (h *ProcedureHandler) List(c *gin.Context) {
	out, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// Create resolves (or creates) the document and procedure and writes the
// lineage's first version in one transactional unit.
func (h *ProcedureHandler) Create(c *gin.Context) {
	var req createProcedureRequest
	if !bindAndValidate(c, &req) {
		return
	}

	topSections, err := encodeStringList(req.RetrievedTopSections)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	version, err := req.insertVersionRequest.toInput(uuid.Nil, req.Entity)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	created, err := h.ledger.InsertInitial(c.Request.Context(), services.InitialInsertInput{
		Document: types.DocumentRef{
			Spec:    req.Document.Spec,
			Version: req.Document.Version,
			Release: req.Document.Release,
		},
		ProcedureName:        req.ProcedureName,
		RetrievedTopSections: topSections,
		Version:              version,
	})
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

// GetLatest serves the lineage's latest version joined with procedure and
// document context.
func (h *ProcedureHandler) GetLatest(c *gin.Context) {
	procedureID, entity, ok := lineageParams(c)
	if !ok {
		return
	}
	out, err := h.catalog.GetLatestDetail(c.Request.Context(), procedureID, entity)
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GetHistory lists the lineage's versions, oldest first.
func (h *ProcedureHandler) GetHistory(c *gin.Context) {
	procedureID, entity, ok := lineageParams(c)
	if !ok {
		return
	}
	out, err := h.catalog.GetHistory(c.Request.Context(), procedureID, entity)
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GetVersion deep-links one historical version within the lineage.
func (h *ProcedureHandler) GetVersion(c *gin.Context) {
	procedureID, entity, ok := lineageParams(c)
	if !ok {
		return
	}
	graphID, err := uuid.Parse(c.Param("graph_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	out, err := h.catalog.GetVersionDetail(c.Request.Context(), procedureID, entity, graphID)
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// Insert appends a new version to an existing procedure's lineage.
func (h *ProcedureHandler) Insert(c *gin.Context) {
	procedureID, entity, ok := lineageParams(c)
	if !ok {
		return
	}
	var req insertVersionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	input, err := req.toInput(procedureID, entity)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	created, err := h.ledger.InsertNewVersion(c.Request.Context(), input)
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

// Delete removes the whole lineage and, when nothing else remains under the
// procedure, the procedure itself.
func (h *ProcedureHandler) Delete(c *gin.Context) {
	procedureID, entity, ok := lineageParams(c)
	if !ok {
		return
	}
	out, err := h.ledger.DeleteLineage(c.Request.Context(), procedureID, entity)
	if err != nil {
		response.RespondStoreError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"deleted_count":     out.DeletedCount,
		"procedure_removed": out.ProcedureRemoved,
	})
}

func (r *insertVersionRequest) toInput(procedureID uuid.UUID, entity string) (services.InsertVersionInput, error) {
	refs, err := encodeStringList(r.References)
	if err != nil {
		return services.InsertVersionInput{}, err
	}
	status := r.Status
	if status == "" {
		status = "draft"
	}
	return services.InsertVersionInput{
		ProcedureID:     procedureID,
		Entity:          entity,
		Graph:           datatypes.JSON(r.Graph),
		ContextMarkdown: r.ContextMarkdown,
		References:      refs,
		CommitTitle:     r.CommitTitle,
		CommitMessage:   r.CommitMessage,
		Status:          status,
		Overrides:       r.Metadata.toDomain(),
	}, nil
}

func lineageParams(c *gin.Context) (uuid.UUID, string, bool) {
	procedureID, err := uuid.Parse(c.Param("procedure_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return uuid.Nil, "", false
	}
	entity := c.Param("entity")
	if entity == "" {
		response.RespondError(c, http.StatusBadRequest, "validation", errMissingEntity)
		return uuid.Nil, "", false
	}
	return procedureID, entity, true
}

func bindAndValidate(c *gin.Context, req interface{ Validate() error }) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return false
	}
	if err := req.Validate(); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return false
	}
	return true
}

func encodeStringList(in []string) (datatypes.JSON, error) {
	if len(in) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

var errMissingEntity = errors.New("entity path parameter is required")
