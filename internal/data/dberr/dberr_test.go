package dberr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/domain/storeerr"
)

func TestMapCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want storeerr.ErrorCode
	}{
		{"nil", nil, ""},
		{"record not found", gorm.ErrRecordNotFound, storeerr.CodeNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, storeerr.CodeConflict},
		{"gorm foreign key violated", gorm.ErrForeignKeyViolated, storeerr.CodeConflict},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, storeerr.CodeConflict},
		{"pg foreign key violation", &pgconn.PgError{Code: "23503"}, storeerr.CodeConflict},
		{"pg serialization failure", &pgconn.PgError{Code: "40001"}, storeerr.CodeUnavailable},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, storeerr.CodeUnavailable},
		{"pg statement timeout", &pgconn.PgError{Code: "57014"}, storeerr.CodeUnavailable},
		{"context deadline", context.DeadlineExceeded, storeerr.CodeUnavailable},
		{"wrapped pg error", fmt.Errorf("insert graph: %w", &pgconn.PgError{Code: "23505"}), storeerr.CodeConflict},
		{"message fallback duplicate", errors.New(`ERROR: duplicate key value violates unique constraint "idx_graph_lineage_version"`), storeerr.CodeConflict},
		{"unknown", errors.New("boom"), storeerr.CodeInternal},
	}
	for _, tc := range cases {
		got := storeerr.CodeOf(Map("op", tc.err))
		if got != tc.want {
			t.Errorf("%s: Map code = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMapPreservesStoreErrors(t *testing.T) {
	orig := storeerr.New(storeerr.CodeValidation, "ledger.insert", "missing metadata", nil)
	if got := Map("repo.create", orig); got != orig {
		t.Fatalf("Map rewrapped an already-coded error: %v", got)
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(&pgconn.PgError{Code: "23505"}) {
		t.Error("raw pg unique violation not recognized as conflict")
	}
	if !IsConflict(Map("op", gorm.ErrDuplicatedKey)) {
		t.Error("mapped duplicate key not recognized as conflict")
	}
	if IsConflict(gorm.ErrRecordNotFound) {
		t.Error("not-found misclassified as conflict")
	}
}
