package procedures_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/specgraph/fgp-backend/internal/data/repos/procedures"
	"github.com/specgraph/fgp-backend/internal/data/repos/testutil"
)

func TestGraphVersionRepoLatestPicksHighestVersion(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	proc := testutil.SeedProcedure(t, ctx, tx, doc.ID, "PDU Session Establishment")
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 1)
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 2)
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "SMF", 7)

	repo := procedures.NewGraphVersionRepo(tx, testutil.Logger(t))

	latest, err := repo.Latest(dbc, proc.ID, "amf")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.Version != 2 {
		t.Fatalf("expected version 2, got %+v", latest)
	}
	if latest.Entity != "AMF" {
		t.Fatalf("expected stored spelling AMF, got %q", latest.Entity)
	}

	none, err := repo.Latest(dbc, proc.ID, "UPF")
	if err != nil {
		t.Fatalf("Latest unseen entity: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for unseen entity, got %+v", none)
	}
}

func TestGraphVersionRepoListByLineageOrders(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	proc := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Registration")
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 3)
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 1)
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 2)

	repo := procedures.NewGraphVersionRepo(tx, testutil.Logger(t))
	rows, err := repo.ListByLineage(dbc, proc.ID, "AMF")
	if err != nil {
		t.Fatalf("ListByLineage: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Version != i+1 {
			t.Fatalf("row %d: expected version %d, got %d", i, i+1, row.Version)
		}
	}
}

func TestGraphVersionRepoDeleteByLineage(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	proc := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Handover")
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 1)
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "AMF", 2)
	testutil.SeedGraphVersion(t, ctx, tx, proc.ID, "SMF", 1)

	repo := procedures.NewGraphVersionRepo(tx, testutil.Logger(t))

	deleted, err := repo.DeleteByLineage(dbc, proc.ID, "amf")
	if err != nil {
		t.Fatalf("DeleteByLineage: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	count, err := repo.CountByProcedure(dbc, proc.ID)
	if err != nil {
		t.Fatalf("CountByProcedure: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining version, got %d", count)
	}

	deleted, err = repo.DeleteByLineage(dbc, proc.ID, "AMF")
	if err != nil {
		t.Fatalf("DeleteByLineage repeat: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted on repeat, got %d", deleted)
	}
}

func TestGraphVersionRepoEntitiesByProcedureIDs(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	procA := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Registration")
	procB := testutil.SeedProcedure(t, ctx, tx, doc.ID, "Handover")
	testutil.SeedGraphVersion(t, ctx, tx, procA.ID, "AMF", 1)
	testutil.SeedGraphVersion(t, ctx, tx, procA.ID, "AMF", 2)
	testutil.SeedGraphVersion(t, ctx, tx, procA.ID, "SMF", 1)
	testutil.SeedGraphVersion(t, ctx, tx, procB.ID, "UPF", 1)

	repo := procedures.NewGraphVersionRepo(tx, testutil.Logger(t))
	entities, err := repo.EntitiesByProcedureIDs(dbc, []uuid.UUID{procA.ID, procB.ID})
	if err != nil {
		t.Fatalf("EntitiesByProcedureIDs: %v", err)
	}
	if got := entities[procA.ID]; len(got) != 2 {
		t.Fatalf("expected 2 entities for procA, got %v", got)
	}
	if got := entities[procB.ID]; len(got) != 1 || got[0] != "UPF" {
		t.Fatalf("expected [UPF] for procB, got %v", got)
	}
}
