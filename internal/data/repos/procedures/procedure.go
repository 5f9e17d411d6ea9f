package procedures

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/platform/dbctx"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type ProcedureRepo interface {
	// CreateIfAbsent is the atomic "insert if absent" half of resolve-or-create:
	// ON CONFLICT (document_id, name) DO NOTHING. Returns true when this call
	// inserted the row.
	CreateIfAbsent(dbc dbctx.Context, row *types.Procedure) (bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Procedure, error)
	// GetByIDForUpdate fetches the row with a FOR UPDATE lock. Callers use it
	// to serialize decisions that span several statements, like the
	// cascade-delete check. Only meaningful inside a transaction.
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Procedure, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Procedure, error)
	GetByDocumentAndName(dbc dbctx.Context, documentID uuid.UUID, name string) (*types.Procedure, error)
	ListAll(dbc dbctx.Context) ([]*types.Procedure, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type procedureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcedureRepo(db *gorm.DB, baseLog *logger.Logger) ProcedureRepo {
	return &procedureRepo{db: db, log: baseLog.With("repo", "ProcedureRepo")}
}

func (r *procedureRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *procedureRepo) CreateIfAbsent(dbc dbctx.Context, row *types.Procedure) (bool, error) {
	if row == nil || strings.TrimSpace(row.Name) == "" {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Name = strings.TrimSpace(row.Name)
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.ExtractedAt.IsZero() {
		row.ExtractedAt = now
	}
	res := r.handle(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *procedureRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Procedure, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *procedureRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*types.Procedure, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Procedure
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
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

func (r *procedureRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Procedure, error) {
	var out []*types.Procedure
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *procedureRepo) GetByDocumentAndName(dbc dbctx.Context, documentID uuid.UUID, name string) (*types.Procedure, error) {
	if documentID == uuid.Nil || strings.TrimSpace(name) == "" {
		return nil, nil
	}
	var out []*types.Procedure
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("document_id = ? AND name = ?", documentID, strings.TrimSpace(name)).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *procedureRepo) ListAll(dbc dbctx.Context) ([]*types.Procedure, error) {
	var out []*types.Procedure
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *procedureRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	res := r.handle(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Procedure{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
