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

type DocumentRepo interface {
	CreateIfAbsent(dbc dbctx.Context, row *types.Document) (bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Document, error)
	GetByRef(dbc dbctx.Context, ref types.DocumentRef) (*types.Document, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *documentRepo) CreateIfAbsent(dbc dbctx.Context, row *types.Document) (bool, error) {
	if row == nil || strings.TrimSpace(row.Spec) == "" {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Spec = strings.TrimSpace(row.Spec)
	row.Version = strings.TrimSpace(row.Version)
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.ExtractedAt.IsZero() {
		row.ExtractedAt = now
	}
	res := r.handle(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "spec"}, {Name: "version"}, {Name: "release"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *documentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
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

func (r *documentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Document, error) {
	var out []*types.Document
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) GetByRef(dbc dbctx.Context, ref types.DocumentRef) (*types.Document, error) {
	if strings.TrimSpace(ref.Spec) == "" {
		return nil, nil
	}
	var out []*types.Document
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("spec = ? AND version = ? AND release = ?",
			strings.TrimSpace(ref.Spec), strings.TrimSpace(ref.Version), ref.Release).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
