package procedures_test

import (
	"context"
	"testing"

	"github.com/specgraph/fgp-backend/internal/data/dberr"
	"github.com/specgraph/fgp-backend/internal/data/repos/procedures"
	"github.com/specgraph/fgp-backend/internal/data/repos/testutil"
)

func TestProcedureDeleteRestrictedWhileVersionsExist(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	proc := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Registration")
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "UE", 1)

	repo := procedures.NewProcedureRepo(tx, testutil.Logger(t))

	// The graph -> procedure foreign key is ON DELETE RESTRICT; the database
	// must reject the delete while any version still references the row.
	_, err := repo.Delete(dbc, proc.ID)
	if err == nil {
		t.Fatal("deleting a procedure with live graph versions must fail")
	}
	if !dberr.IsConflict(err) {
		t.Fatalf("expected a conflict-mapped constraint violation, got %v", err)
	}
}

func TestProcedureGetByIDForUpdate(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	proc := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Handover")

	repo := procedures.NewProcedureRepo(tx, testutil.Logger(t))

	got, err := repo.GetByIDForUpdate(dbc, proc.ID)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got == nil || got.ID != proc.ID {
		t.Fatalf("expected locked fetch to return the row, got %+v", got)
	}

	doc2 := testutil.SeedDocument(t, ctx, tx, "TS 38.331")
	missing, err := repo.GetByIDForUpdate(dbc, doc2.ID)
	if err != nil {
		t.Fatalf("GetByIDForUpdate unknown id: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown procedure id, got %+v", missing)
	}
}
