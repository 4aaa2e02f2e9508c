package sdlog

import (
	"errors"
	"fmt"
)

// Kind identifies the stage of Append which failed.
type Kind int

// Failure kinds, in pipeline order.
const (
	CannotConnect Kind = iota + 1
	NoSuitableVolume
	CannotReadRootDir
	CannotOpenFile
	CannotWriteToOpenedFile
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case CannotConnect:
		return "CannotConnect"
	case NoSuitableVolume:
		return "NoSuitableVolume"
	case CannotReadRootDir:
		return "CannotReadRootDir"
	case CannotOpenFile:
		return "CannotOpenFile"
	case CannotWriteToOpenedFile:
		return "CannotWriteToOpenedFile"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	// ErrCannotConnect matches errors of kind CannotConnect.
	ErrCannotConnect = errors.New("cannot connect to card")
	// ErrNoSuitableVolume matches errors of kind NoSuitableVolume.
	ErrNoSuitableVolume = errors.New("no suitable volume")
	// ErrCannotReadRootDir matches errors of kind CannotReadRootDir.
	ErrCannotReadRootDir = errors.New("cannot read root dir")
	// ErrCannotOpenFile matches errors of kind CannotOpenFile.
	ErrCannotOpenFile = errors.New("cannot open file")
	// ErrCannotWriteToOpenedFile matches errors of kind CannotWriteToOpenedFile.
	ErrCannotWriteToOpenedFile = errors.New("cannot write to opened file")
)

var kindErrors = map[Kind]error{
	CannotConnect:           ErrCannotConnect,
	NoSuitableVolume:        ErrNoSuitableVolume,
	CannotReadRootDir:       ErrCannotReadRootDir,
	CannotOpenFile:          ErrCannotOpenFile,
	CannotWriteToOpenedFile: ErrCannotWriteToOpenedFile,
}

// AppendError is returned by Append. Err carries the driver error
// which caused the failure and may be nil.
type AppendError struct {
	Kind Kind
	Err  error
}

// Error implements error.
func (e *AppendError) Error() string {
	msg := e.Kind.String()
	if sentinel := kindErrors[e.Kind]; sentinel != nil {
		msg = sentinel.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the driver error.
func (e *AppendError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind.
func (e *AppendError) Is(target error) bool {
	return target != nil && kindErrors[e.Kind] == target
}

// KindOf extracts the Kind from an error returned by Append.
func KindOf(err error) (Kind, bool) {
	var appendErr *AppendError
	if errors.As(err, &appendErr) {
		return appendErr.Kind, true
	}
	return 0, false
}
