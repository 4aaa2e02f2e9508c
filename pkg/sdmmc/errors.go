package sdmmc

import "errors"

var (
	// ErrNotInitialized indicates the card is used before Init.
	ErrNotInitialized = errors.New("card not initialized")
	// ErrNoSuchVolume indicates the volume index can't be mounted.
	ErrNoSuchVolume = errors.New("no such volume")
	// ErrInvalidHandle indicates a handle is closed or foreign to the controller.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrNotFound indicates the file doesn't exist.
	ErrNotFound = errors.New("file not found")
	// ErrReadOnly indicates a write to a file opened read-only.
	ErrReadOnly = errors.New("file opened read-only")
	// ErrInvalidName indicates the name is not a valid short (8.3) name.
	ErrInvalidName = errors.New("invalid file name")
)
