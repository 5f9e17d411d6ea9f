package app

import (
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/data/repos"
	"github.com/specgraph/fgp-backend/internal/platform/logger"
)

type Repos struct {
	Document     repos.DocumentRepo
	Procedure    repos.ProcedureRepo
	Section      repos.SectionRepo
	GraphVersion repos.GraphVersionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Document:     repos.NewDocumentRepo(db, log),
		Procedure:    repos.NewProcedureRepo(db, log),
		Section:      repos.NewSectionRepo(db, log),
		GraphVersion: repos.NewGraphVersionRepo(db, log),
	}
}
