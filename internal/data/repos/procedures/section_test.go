package procedures_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/specgraph/fgp-backend/internal/data/repos/procedures"
	"github.com/specgraph/fgp-backend/internal/data/repos/testutil"
	types "github.com/specgraph/fgp-backend/internal/domain"
)

func TestSectionRepoCreateBatchAndCount(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	repo := procedures.NewSectionRepo(tx, testutil.Logger(t))

	rows := []*types.Section{
		{DocumentID: doc.ID, Heading: "4.3.2 PDU Session Establishment", Path: "4.3.2", Level: 3, Content: "body a"},
		{DocumentID: doc.ID, Heading: "4.3.2.1 Non-roaming", Path: "4.3.2.1", Level: 4, Content: "body b"},
		{DocumentID: doc.ID, Heading: "4.9.1 Handover", Path: "4.9.1", Level: 3, Content: "body c"},
	}
	if err := repo.CreateBatch(dbc, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for i, row := range rows {
		if row.ID == uuid.Nil {
			t.Fatalf("row %d: CreateBatch must assign an id", i)
		}
	}

	count, err := repo.CountByDocument(dbc, doc.ID)
	if err != nil {
		t.Fatalf("CountByDocument: %v", err)
	}
	if count != int64(len(rows)) {
		t.Fatalf("expected %d sections, got %d", len(rows), count)
	}

	other := testutil.SeedDocument(t, ctx, tx, "TS 38.331")
	count, err = repo.CountByDocument(dbc, other.ID)
	if err != nil {
		t.Fatalf("CountByDocument empty document: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 sections for fresh document, got %d", count)
	}
}

func TestSectionRepoMatchHeadings(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.3.2 PDU Session Establishment", "4.3.2", 3, "body a")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.3.2.1 Non-roaming", "4.3.2.1", 4, "body b")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.9.1 Handover", "4.9.1", 3, "body c")

	repo := procedures.NewSectionRepo(tx, testutil.Logger(t))

	matched, err := repo.MatchHeadings(dbc, doc.ID, []string{"4.3.2"})
	if err != nil {
		t.Fatalf("MatchHeadings: %v", err)
	}
	if len(matched) != 1 || matched[0].Path != "4.3.2" {
		t.Fatalf("expected the 4.3.2 heading only, got %+v", matched)
	}

	none, err := repo.MatchHeadings(dbc, doc.ID, []string{"9.9"})
	if err != nil {
		t.Fatalf("MatchHeadings no match: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestSectionRepoListByPathPrefixes(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := testutil.DBC(ctx, tx)

	doc := testutil.SeedDocument(t, ctx, tx, "TS 23.502")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.3.2 PDU Session Establishment", "4.3.2", 3, "body a")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.3.2.1 Non-roaming", "4.3.2.1", 4, "body b")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.3.20 Unrelated", "4.3.20", 3, "body d")
	testutil.SeedSection(t, ctx, tx, doc.ID, "4.9.1 Handover", "4.9.1", 3, "body c")

	repo := procedures.NewSectionRepo(tx, testutil.Logger(t))
	rows, err := repo.ListByPathPrefixes(dbc, doc.ID, []string{"4.3.2"})
	if err != nil {
		t.Fatalf("ListByPathPrefixes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected section and its child only, got %d rows", len(rows))
	}
	for _, row := range rows {
		if row.Path == "4.3.20" {
			t.Fatal("dotted prefix must not match 4.3.20")
		}
	}
}
