package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
)

// Postgres error codes translated at the storage boundary. The unique
// constraint is the authoritative backstop behind the advisory
// Exists… probes; a race that slips past a probe still surfaces as a
// conflict, never as a raw driver error.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate converts driver-specific constraint failures into the
// domain error taxonomy and wraps everything else with the operation.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s: record already exists", op))
		case pgForeignKeyViolation:
			return appErrors.Wrap(err, appErrors.ErrInvalidReference.Code, appErrors.ErrInvalidReference.Status, fmt.Sprintf("%s: referenced entity does not exist", op))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
