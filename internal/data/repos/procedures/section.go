package procedures

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/platform/dbctx"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type SectionRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.Section) error
	// MatchHeadings finds sections whose heading starts with any of the given
	// reference patterns (case-insensitive, "5.3.5" matches "5.3.5 RRC ...").
	MatchHeadings(dbc dbctx.Context, documentID uuid.UUID, patterns []string) ([]*types.Section, error)
	// ListByPathPrefixes fetches the matched sections plus all their
	// descendants, ordered by path so the markdown reads top to bottom.
	ListByPathPrefixes(dbc dbctx.Context, documentID uuid.UUID, paths []string) ([]*types.Section, error)
	CountByDocument(dbc dbctx.Context, documentID uuid.UUID) (int64, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (r *sectionRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *sectionRepo) CreateBatch(dbc dbctx.Context, rows []*types.Section) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row != nil && row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Create(&rows).Error
}

func (r *sectionRepo) MatchHeadings(dbc dbctx.Context, documentID uuid.UUID, patterns []string) ([]*types.Section, error) {
	var out []*types.Section
	if documentID == uuid.Nil || len(patterns) == 0 {
		return out, nil
	}
	q := r.handle(dbc).WithContext(dbc.Ctx).Where("document_id = ?", documentID)
	match := r.db.Session(&gorm.Session{NewDB: true})
	var cond *gorm.DB
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		expr := match.Where("heading ILIKE ?", escapeLike(p)+" %")
		if cond == nil {
			cond = expr
		} else {
			cond = cond.Or(expr)
		}
	}
	if cond == nil {
		return out, nil
	}
	if err := q.Where(cond).Order("path ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) ListByPathPrefixes(dbc dbctx.Context, documentID uuid.UUID, paths []string) ([]*types.Section, error) {
	var out []*types.Section
	if documentID == uuid.Nil || len(paths) == 0 {
		return out, nil
	}
	q := r.handle(dbc).WithContext(dbc.Ctx).Where("document_id = ?", documentID)
	match := r.db.Session(&gorm.Session{NewDB: true})
	var cond *gorm.DB
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		expr := match.Where("path = ? OR path LIKE ?", p, escapeLike(p)+".%")
		if cond == nil {
			cond = expr
		} else {
			cond = cond.Or(expr)
		}
	}
	if cond == nil {
		return out, nil
	}
	if err := q.Where(cond).Order("path ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionRepo) CountByDocument(dbc dbctx.Context, documentID uuid.UUID) (int64, error) {
	if documentID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.Section{}).
		Where("document_id = ?", documentID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
