package sdmmc

import "fmt"

// BlockDevice is the card itself.
type BlockDevice interface {
	// Init powers up the card and claims the bus.
	Init() error
	// Deinit releases the bus so other peripherals can use it.
	Deinit()
	// CardSizeBytes reports the card capacity.
	CardSizeBytes() (uint64, error)
}

// VolumeIdx selects a volume on the card. Index 0 is the first
// mountable filesystem, which is the whole card for superfloppy layouts.
type VolumeIdx int

// Volume is a mounted partition.
type Volume interface {
	// Index returns the index the volume was mounted with.
	Index() VolumeIdx
}

// Directory is an open directory on a Volume.
type Directory interface {
	// Path returns the absolute path of the directory on its volume.
	Path() string
}

// File is an open file in a Directory.
type File interface {
	// Name returns the name of the file within its directory.
	Name() string
	// Mode returns the mode the file was opened with.
	Mode() Mode
}

// DirEntry describes a file in a directory listing.
type DirEntry struct {
	Name  string
	Size  int64
	IsDir bool
}

// Mode is the open mode of a file.
type Mode int

// Open modes.
const (
	ModeReadOnly Mode = iota
	ModeReadWriteCreateOrAppend
	ModeReadWriteCreateOrTruncate
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "ReadOnly"
	case ModeReadWriteCreateOrAppend:
		return "ReadWriteCreateOrAppend"
	case ModeReadWriteCreateOrTruncate:
		return "ReadWriteCreateOrTruncate"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Writable indicates the mode permits writes.
func (m Mode) Writable() bool {
	return m == ModeReadWriteCreateOrAppend || m == ModeReadWriteCreateOrTruncate
}

// Controller is the filesystem controller driving a BlockDevice.
// All calls block until the underlying bus transactions complete.
// Handles are only valid with the controller which created them.
type Controller interface {
	// Device returns the card driven by this controller.
	Device() BlockDevice
	// MountVolume mounts the volume at idx.
	MountVolume(idx VolumeIdx) (Volume, error)
	// ReleaseVolume releases resources held by a mounted volume.
	ReleaseVolume(vol Volume) error
	// OpenRootDir opens the root directory of vol.
	OpenRootDir(vol Volume) (Directory, error)
	// OpenFileInDir opens name in dir with the given mode.
	OpenFileInDir(vol Volume, dir Directory, name string, mode Mode) (File, error)
	// Read reads from the current position of file.
	Read(vol Volume, file File, p []byte) (int, error)
	// Write writes to the current position of file.
	Write(vol Volume, file File, p []byte) (int, error)
	// CloseFile closes file and flushes metadata.
	CloseFile(vol Volume, file File) error
	// CloseDir closes dir.
	CloseDir(vol Volume, dir Directory) error
	// ListDir lists the entries in dir.
	ListDir(vol Volume, dir Directory) ([]DirEntry, error)
}
