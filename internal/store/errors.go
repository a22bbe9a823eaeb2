package store

import "fmt"

// StorageReadError describes a slot that exists but could not be read or decoded.
// Loads degrade to "absent" and log this error instead of returning it.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}
