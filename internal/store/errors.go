package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gigboard/gigadmin/internal/models"
)

// PostgreSQL SQLSTATE codes the stores classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// classifyWrite maps insert/update failures onto the models error taxonomy.
// notFound is returned when the target row vanished (no rows from RETURNING).
func classifyWrite(err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", models.ErrDuplicateKey, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", models.ErrReferenceNotFound, pgErr.ConstraintName)
		case pgCheckViolation:
			return models.NewValidationError("", "violates constraint "+pgErr.ConstraintName)
		}
	}

	return err
}

// classifyDelete maps delete failures. A foreign key violation here means
// other rows still point at the target.
func classifyDelete(err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", models.ErrStillReferenced, pgErr.ConstraintName)
	}

	return err
}

// isClassified reports whether err already belongs to the taxonomy and
// should be returned without further wrapping.
func isClassified(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrDuplicateKey) ||
		errors.Is(err, models.ErrValidation)
}

// wrapUnclassified adds context to storage errors the taxonomy does not cover.
func wrapUnclassified(err error, op string) error {
	if isClassified(err) {
		return err
	}

	return fmt.Errorf("%s: %w", op, err)
}
