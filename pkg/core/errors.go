package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrStorageFault = errors.New("storage fault")
	ErrReadOnly     = errors.New("store is in read-only mode")
	ErrUnknownColor = errors.New("unknown color")
)

// StorageFault reports that the storage medium failed (unavailable, full,
// corrupt). The core never retries; the command that hit it simply does not
// complete.
type StorageFault struct {
	Op  string
	Err error
}

// NewStorageFault wraps err as a fault of operation op. A nil err yields nil.
func NewStorageFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageFault{Op: op, Err: err}
}

func (f *StorageFault) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageFault, f.Op, f.Err)
}

func (f *StorageFault) Unwrap() error { return f.Err }

// Is makes errors.Is(err, ErrStorageFault) true for any fault.
func (f *StorageFault) Is(target error) bool {
	return target == ErrStorageFault
}
