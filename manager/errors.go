package manager

import "errors"

var (
	// ErrStorageInit: the storage folder or file cannot be created.
	ErrStorageInit = errors.New("storage init failed")
	// ErrStorageRead: the storage exists but cannot be read or decoded.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageWrite: the collection was not persisted.
	ErrStorageWrite = errors.New("storage write failed")
)
