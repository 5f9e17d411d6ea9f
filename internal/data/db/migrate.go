package db

import (
	"gorm.io/gorm"

	types "github.com/specgraph/fgp-backend/internal/domain"
)

// AutoMigrateAll creates the relational layout, including the uniqueness
// constraints the version allocator and the procedure upsert depend on:
// document (spec, version, release), procedure (document_id, name) and
// graph (procedure_id, entity_lower, version). Foreign keys are created too;
// graph -> procedure is ON DELETE RESTRICT so the database itself refuses to
// drop a procedure while any version still references it.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Document{},
		&types.Section{},
		&types.Procedure{},
		&types.GraphVersion{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
