package storage

import "errors"

var (
	// ErrNotFound is returned by StorageApi.GetItem implementations for an absent key.
	ErrNotFound = errors.New("storage: not found")
	// ErrStorageDisabled is returned by a MemoryStorage that has been disabled, like a browser with storage blocked.
	ErrStorageDisabled = errors.New("storage: disabled")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
