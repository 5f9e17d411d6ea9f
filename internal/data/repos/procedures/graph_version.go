package procedures

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/domain/storeerr"
	"github.com/specgraph/fgp-backend/internal/platform/dbctx"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type GraphVersionRepo interface {
	Create(dbc dbctx.Context, row *types.GraphVersion) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GraphVersion, error)
	Latest(dbc dbctx.Context, procedureID uuid.UUID, entity string) (*types.GraphVersion, error)
	ListByLineage(dbc dbctx.Context, procedureID uuid.UUID, entity string) ([]*types.GraphVersion, error)
	DeleteByLineage(dbc dbctx.Context, procedureID uuid.UUID, entity string) (int64, error)
	CountByProcedure(dbc dbctx.Context, procedureID uuid.UUID) (int64, error)
	EntitiesByProcedureIDs(dbc dbctx.Context, procedureIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

type graphVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGraphVersionRepo(db *gorm.DB, baseLog *logger.Logger) GraphVersionRepo {
	return &graphVersionRepo{db: db, log: baseLog.With("repo", "GraphVersionRepo")}
}

func (r *graphVersionRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *graphVersionRepo) Create(dbc dbctx.Context, row *types.GraphVersion) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Entity = strings.TrimSpace(row.Entity)
	row.EntityLower = strings.ToLower(row.Entity)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(row).Error
}

func (r *graphVersionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GraphVersion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.GraphVersion
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Latest returns the row with the maximum version for the lineage, or nil when
// the lineage has no rows. Two rows claiming the same maximum version means
// the uniqueness constraint was bypassed; that is corruption and fails loudly
// instead of picking one arbitrarily.
func (r *graphVersionRepo) Latest(dbc dbctx.Context, procedureID uuid.UUID, entity string) (*types.GraphVersion, error) {
	if procedureID == uuid.Nil {
		return nil, nil
	}
	var out []*types.GraphVersion
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("procedure_id = ? AND entity_lower = ?", procedureID, strings.ToLower(strings.TrimSpace(entity))).
		Order("version DESC").
		Limit(2).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	if len(out) == 2 && out[0].Version == out[1].Version {
		r.log.Error("Duplicate maximum version in lineage",
			"procedure_id", procedureID.String(),
			"entity", entity,
			"version", out[0].Version,
		)
		return nil, storeerr.New(storeerr.CodeInternal, "GraphVersionRepo.Latest",
			"duplicate maximum version in lineage", nil)
	}
	return out[0], nil
}

func (r *graphVersionRepo) ListByLineage(dbc dbctx.Context, procedureID uuid.UUID, entity string) ([]*types.GraphVersion, error) {
	var out []*types.GraphVersion
	if procedureID == uuid.Nil {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("procedure_id = ? AND entity_lower = ?", procedureID, strings.ToLower(strings.TrimSpace(entity))).
		Order("version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *graphVersionRepo) DeleteByLineage(dbc dbctx.Context, procedureID uuid.UUID, entity string) (int64, error) {
	if procedureID == uuid.Nil {
		return 0, nil
	}
	res := r.handle(dbc).WithContext(dbc.Ctx).
		Where("procedure_id = ? AND entity_lower = ?", procedureID, strings.ToLower(strings.TrimSpace(entity))).
		Delete(&types.GraphVersion{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *graphVersionRepo) CountByProcedure(dbc dbctx.Context, procedureID uuid.UUID) (int64, error) {
	if procedureID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.GraphVersion{}).
		Where("procedure_id = ?", procedureID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *graphVersionRepo) EntitiesByProcedureIDs(dbc dbctx.Context, procedureIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(procedureIDs))
	if len(procedureIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ProcedureID uuid.UUID
		Entity      string
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.GraphVersion{}).
		Distinct("procedure_id", "entity").
		Where("procedure_id IN ?", procedureIDs).
		Order("procedure_id, entity").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProcedureID] = append(out[row.ProcedureID], row.Entity)
	}
	return out, nil
}
