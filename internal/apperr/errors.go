package apperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds surfaced by the core. Handlers map them to HTTP statuses,
// callers match with errors.Is.
var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrInsufficientStock = errors.New("insufficient stock") // 409
	ErrStateConflict     = errors.New("state conflict")     // 409
	ErrConcurrency       = errors.New("concurrency")        // 503, retryable
)

// FromDB translates driver/ORM errors into the error kinds above.
// Serialization and deadlock failures become ErrConcurrency so callers
// can retry; unique violations become ErrStateConflict.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrStateConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return ErrConcurrency
		case "23505":
			return ErrStateConflict
		}
	}
	return err
}
