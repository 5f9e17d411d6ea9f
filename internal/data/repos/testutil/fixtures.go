package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/platform/dbctx"
)

func DBC(ctx context.Context, tx *gorm.DB) dbctx.Context {
	return dbctx.WithTx(ctx, tx)
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, spec string) *types.Document {
	tb.Helper()
	doc := &types.Document{
		ID:          uuid.New(),
		Spec:        spec,
		Version:     "16.1.0",
		Release:     16,
		TOC:         "# TOC",
		ExtractedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return doc
}

func SeedProcedure(tb testing.TB, ctx context.Context, tx *gorm.DB, documentID uuid.UUID, name string) *types.Procedure {
	tb.Helper()
	proc := &types.Procedure{
		ID:                   uuid.New(),
		DocumentID:           documentID,
		Name:                 name,
		RetrievedTopSections: datatypes.JSON([]byte(`["5.3.5"]`)),
		ExtractedAt:          time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(proc).Error; err != nil {
		tb.Fatalf("seed procedure: %v", err)
	}
	return proc
}

func SeedGraphVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, procedureID uuid.UUID, entity string, version int) *types.GraphVersion {
	tb.Helper()
	row := &types.GraphVersion{
		ID:               uuid.New(),
		ProcedureID:      procedureID,
		Entity:           entity,
		EntityLower:      strings.ToLower(entity),
		Version:          version,
		Graph:            datatypes.JSON([]byte(fmt.Sprintf(`{"states":["s%d"]}`, version))),
		ModelName:        "m1",
		Accuracy:         0.9,
		ExtractionMethod: "llm",
		CommitTitle:      fmt.Sprintf("v%d", version),
		CommitMessage:    "seeded",
		Status:           "draft",
		CreatedAt:        time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed graph version: %v", err)
	}
	return row
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, documentID uuid.UUID, heading, path string, level int, content string) *types.Section {
	tb.Helper()
	row := &types.Section{
		ID:         uuid.New(),
		DocumentID: documentID,
		Heading:    heading,
		Level:      level,
		Path:       path,
		Content:    content,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return row
}
