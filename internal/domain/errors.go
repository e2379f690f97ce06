package domain

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound tags failures where a referenced record does not exist
	// (or is soft-deleted, for entities).
	ErrNotFound = errors.New("not found")
	// ErrValidation tags malformed or semantically invalid input.
	ErrValidation = errors.New("validation")
	// ErrConflict tags operations that would violate an invariant.
	ErrConflict = errors.New("conflict")
	// ErrConfiguration tags missing global configuration, e.g. no initial state.
	ErrConfiguration = errors.New("configuration")
	// ErrStorage tags underlying store failures; the surrounding transaction
	// has been rolled back by the time this surfaces.
	ErrStorage = errors.New("storage")
)

func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

func ConfigurationError(msg string) error {
	return errors.Join(ErrConfiguration, errors.New(strings.TrimSpace(msg)))
}

func StorageError(msg string) error {
	return errors.Join(ErrStorage, errors.New(strings.TrimSpace(msg)))
}

// MapError classifies infrastructure failures into the domain taxonomy.
// Errors already carrying a domain tag pass through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrStorage, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return errors.Join(ErrConflict, err)
	default:
		return errors.Join(ErrStorage, err)
	}
}
