package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Store outcomes callers need to tell apart. Anything not classified here is
// a transport-level failure (connectivity, timeout) and is returned as-is.
var (
	// ErrNotFound means the target record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a uniqueness constraint rejected the write.
	ErrConflict = errors.New("record conflict")
	// ErrStale means the conditional write was refused because the stored
	// state is equal or newer. Safe to treat as a successful no-op.
	ErrStale = errors.New("stale update refused")
)

// classify translates GORM errors into the repository error taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
