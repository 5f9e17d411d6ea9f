package repos

import (
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/data/repos/procedures"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type DocumentRepo = procedures.DocumentRepo
type ProcedureRepo = procedures.ProcedureRepo
type SectionRepo = procedures.SectionRepo
type GraphVersionRepo = procedures.GraphVersionRepo

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return procedures.NewDocumentRepo(db, baseLog)
}
func NewProcedureRepo(db *gorm.DB, baseLog *logger.Logger) ProcedureRepo {
	return procedures.NewProcedureRepo(db, baseLog)
}
func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return procedures.NewSectionRepo(db, baseLog)
}
func NewGraphVersionRepo(db *gorm.DB, baseLog *logger.Logger) GraphVersionRepo {
	return procedures.NewGraphVersionRepo(db, baseLog)
}
