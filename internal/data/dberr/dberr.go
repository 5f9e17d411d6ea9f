package dberr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/specgraph/fgp-backend/internal/domain/storeerr"
)

// Map translates gorm/driver failures into store error codes so services can
// branch on semantics instead of driver details. Unique violations come back
// as conflict (the ledger's retry trigger); serialization failures, deadlocks
// and timeouts come back as unavailable (safe to retry from scratch).
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var serr *storeerr.Error
	if errors.As(err, &serr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storeerr.Wrap(storeerr.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storeerr.Wrap(storeerr.CodeConflict, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return storeerr.Wrap(storeerr.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return storeerr.Wrap(storeerr.CodeUnavailable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return storeerr.Wrap(storeerr.CodeConflict, op, err) // unique_violation
		case "23503":
			// foreign_key_violation: a concurrent writer removed (or still
			// holds) the referenced row. Retrying re-reads its state.
			return storeerr.Wrap(storeerr.CodeConflict, op, err)
		case "40001", "40P01", "55P03", "57014":
			// serialization_failure / deadlock_detected / lock_not_available
			// / query_canceled (statement_timeout)
			return storeerr.Wrap(storeerr.CodeUnavailable, op, err)
		case "08000", "08003", "08006":
			return storeerr.Wrap(storeerr.CodeUnavailable, op, err) // connection failures
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "sqlstate 23505"):
		return storeerr.Wrap(storeerr.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"):
		return storeerr.Wrap(storeerr.CodeUnavailable, op, err)
	default:
		return storeerr.Wrap(storeerr.CodeInternal, op, err)
	}
}

// IsConflict reports whether err maps to a uniqueness conflict without
// requiring the caller to have passed it through Map first.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if storeerr.IsCode(err, storeerr.CodeConflict) {
		return true
	}
	return storeerr.CodeOf(Map("", err)) == storeerr.CodeConflict
}
