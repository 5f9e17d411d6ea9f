package services

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/specgraph/fgp-backend/internal/data/repos/testutil"
	types "github.com/specgraph/fgp-backend/internal/domain"
	"github.com/specgraph/fgp-backend/internal/domain/storeerr"
)

func TestResolveOrCreateIsStable(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	_, directory := newLedger(t, tx)

	ref := types.DocumentRef{Spec: "38.331", Version: "16.1.0", Release: 16}
	dbc := testutil.DBC(ctx, tx)

	first, err := directory.ResolveOrCreate(dbc, ref, "Registration", datatypes.JSON([]byte(`["5.3.5"]`)))
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := directory.ResolveOrCreate(dbc, ref, "Registration", nil)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("resolve-or-create returned two ids for one pair: %s vs %s", first.ID, second.ID)
	}

	other, err := directory.ResolveOrCreate(dbc, ref, "Handover", nil)
	if err != nil {
		t.Fatalf("resolve other name: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("distinct procedure names resolved to one row")
	}
	if other.DocumentID != first.DocumentID {
		t.Fatal("same document ref resolved to two documents")
	}
}

func TestResolveOrCreateValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	_, directory := newLedger(t, tx)

	_, err := directory.ResolveOrCreate(testutil.DBC(ctx, tx), types.DocumentRef{}, "Registration", nil)
	if !storeerr.IsCode(err, storeerr.CodeValidation) {
		t.Fatalf("empty document ref err = %v, want validation", err)
	}
	_, err = directory.ResolveOrCreate(testutil.DBC(ctx, tx), types.DocumentRef{Spec: "38.331"}, "  ", nil)
	if !storeerr.IsCode(err, storeerr.CodeValidation) {
		t.Fatalf("blank name err = %v, want validation", err)
	}
}

func TestDeleteIfEmptyIsANoOpWhileVersionsRemain(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	_, directory := newLedger(t, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "38.331")
	proc := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Registration")
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "UE", 1)

	dbc := testutil.DBC(ctx, tx)
	removed, err := directory.DeleteIfEmpty(dbc, proc.ID)
	if err != nil {
		t.Fatalf("DeleteIfEmpty: %v", err)
	}
	if removed {
		t.Fatal("procedure with a live lineage was removed")
	}

	if err := tx.WithContext(ctx).Where("procedure_id = ?", proc.ID).Delete(&types.GraphVersion{}).Error; err != nil {
		t.Fatalf("clear versions: %v", err)
	}
	removed, err = directory.DeleteIfEmpty(dbc, proc.ID)
	if err != nil {
		t.Fatalf("DeleteIfEmpty after clear: %v", err)
	}
	if !removed {
		t.Fatal("empty procedure was not removed")
	}
}
