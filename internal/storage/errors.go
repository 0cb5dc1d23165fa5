package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped in a StorageError when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// StorageError is the single failure kind reported by repositories. It
// covers connectivity, read, write and constraint failures of the backing
// store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether any error in err's chain is a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Wrap annotates a backend failure with the operation that produced it.
// Errors that already carry a StorageError are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
