package image

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/diskfs/go-diskfs/filesystem"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// ErrUnsupportedMode is returned when opening files in a mode the
// filesystem driver can't provide.
var ErrUnsupportedMode = errors.New("unsupported open mode")

// Controller drives the filesystems of a Device.
//
// Volume index 0 is a filesystem spanning the whole image, indices 1..N
// are the MBR partitions. A partitioned image therefore fails to mount
// at index 0 and is found at index 1 by linear probing.
type Controller struct {
	// Clock is kept for the driver contract. go-diskfs stamps files with
	// the host clock, so it's only consulted by callers.
	Clock sdmmc.TimeSource

	dev     *Device
	handles map[interface{}]struct{}
}

var _ sdmmc.Controller = (*Controller)(nil)

// NewController creates a Controller over dev.
func NewController(dev *Device, clock sdmmc.TimeSource) *Controller {
	return &Controller{
		Clock:   clock,
		dev:     dev,
		handles: make(map[interface{}]struct{}),
	}
}

// Open is a shortcut creating the Device and the Controller for path.
func Open(path string, clock sdmmc.TimeSource) *Controller {
	return NewController(NewDevice(path), clock)
}

type volume struct {
	idx sdmmc.VolumeIdx
	fs  filesystem.FileSystem
}

func (v *volume) Index() sdmmc.VolumeIdx { return v.idx }

type directory struct {
	vol  *volume
	path string
}

func (d *directory) Path() string { return d.path }

type file struct {
	dir  *directory
	name string
	mode sdmmc.Mode
	f    filesystem.File
}

func (f *file) Name() string     { return f.name }
func (f *file) Mode() sdmmc.Mode { return f.mode }

// Device implements sdmmc.Controller.
func (c *Controller) Device() sdmmc.BlockDevice {
	return c.dev
}

// MountVolume implements sdmmc.Controller.
func (c *Controller) MountVolume(idx sdmmc.VolumeIdx) (sdmmc.Volume, error) {
	if c.dev.disk == nil {
		return nil, sdmmc.ErrNotInitialized
	}
	if idx < 0 {
		return nil, sdmmc.ErrNoSuchVolume
	}
	fs, err := c.dev.disk.GetFilesystem(int(idx))
	if err != nil {
		return nil, fmt.Errorf("volume %d: %w", idx, err)
	}
	if fs.Type() != filesystem.TypeFat32 {
		return nil, fmt.Errorf("volume %d is not FAT: %w", idx, sdmmc.ErrNoSuchVolume)
	}
	vol := &volume{idx: idx, fs: fs}
	c.handles[vol] = struct{}{}
	return vol, nil
}

// ReleaseVolume implements sdmmc.Controller.
func (c *Controller) ReleaseVolume(vol sdmmc.Volume) error {
	if _, err := c.volume(vol); err != nil {
		return err
	}
	delete(c.handles, vol)
	return nil
}

// OpenRootDir implements sdmmc.Controller.
func (c *Controller) OpenRootDir(vol sdmmc.Volume) (sdmmc.Directory, error) {
	v, err := c.volume(vol)
	if err != nil {
		return nil, err
	}
	if _, err = v.fs.ReadDir("/"); err != nil {
		return nil, err
	}
	dir := &directory{vol: v, path: "/"}
	c.handles[dir] = struct{}{}
	return dir, nil
}

// OpenFileInDir implements sdmmc.Controller.
func (c *Controller) OpenFileInDir(vol sdmmc.Volume, dir sdmmc.Directory, name string, mode sdmmc.Mode) (sdmmc.File, error) {
	d, err := c.dir(vol, dir)
	if err != nil {
		return nil, err
	}
	var flag int
	switch mode {
	case sdmmc.ModeReadOnly:
		flag = os.O_RDONLY
	case sdmmc.ModeReadWriteCreateOrAppend:
		flag = os.O_RDWR | os.O_CREATE | os.O_APPEND
	default:
		return nil, fmt.Errorf("%s: %w", mode, ErrUnsupportedMode)
	}
	f, err := d.vol.fs.OpenFile(path.Join(d.path, name), flag)
	if err != nil {
		if mode == sdmmc.ModeReadOnly && os.IsNotExist(err) {
			return nil, sdmmc.ErrNotFound
		}
		return nil, err
	}
	if mode == sdmmc.ModeReadWriteCreateOrAppend {
		if _, err = f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, err
		}
	}
	fh := &file{dir: d, name: name, mode: mode, f: f}
	c.handles[fh] = struct{}{}
	return fh, nil
}

// Read implements sdmmc.Controller.
func (c *Controller) Read(vol sdmmc.Volume, f sdmmc.File, p []byte) (int, error) {
	fh, err := c.file(vol, f)
	if err != nil {
		return 0, err
	}
	return fh.f.Read(p)
}

// Write implements sdmmc.Controller.
func (c *Controller) Write(vol sdmmc.Volume, f sdmmc.File, p []byte) (int, error) {
	fh, err := c.file(vol, f)
	if err != nil {
		return 0, err
	}
	if !fh.mode.Writable() {
		return 0, sdmmc.ErrReadOnly
	}
	return fh.f.Write(p)
}

// CloseFile implements sdmmc.Controller.
func (c *Controller) CloseFile(vol sdmmc.Volume, f sdmmc.File) error {
	fh, err := c.file(vol, f)
	if err != nil {
		return err
	}
	delete(c.handles, fh)
	return fh.f.Close()
}

// CloseDir implements sdmmc.Controller.
func (c *Controller) CloseDir(vol sdmmc.Volume, dir sdmmc.Directory) error {
	d, err := c.dir(vol, dir)
	if err != nil {
		return err
	}
	delete(c.handles, d)
	return nil
}

// ListDir implements sdmmc.Controller.
func (c *Controller) ListDir(vol sdmmc.Volume, dir sdmmc.Directory) ([]sdmmc.DirEntry, error) {
	d, err := c.dir(vol, dir)
	if err != nil {
		return nil, err
	}
	infos, err := d.vol.fs.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	entries := make([]sdmmc.DirEntry, 0, len(infos))
	for _, info := range infos {
		if name := info.Name(); name == "." || name == ".." {
			continue
		}
		entries = append(entries, sdmmc.DirEntry{
			Name:  info.Name(),
			Size:  info.Size(),
			IsDir: info.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// OpenHandles returns the number of handles not yet released.
func (c *Controller) OpenHandles() int {
	return len(c.handles)
}

func (c *Controller) volume(vol sdmmc.Volume) (*volume, error) {
	if c.dev.disk == nil {
		return nil, sdmmc.ErrNotInitialized
	}
	v, ok := vol.(*volume)
	if !ok {
		return nil, sdmmc.ErrInvalidHandle
	}
	if _, open := c.handles[v]; !open {
		return nil, sdmmc.ErrInvalidHandle
	}
	return v, nil
}

func (c *Controller) dir(vol sdmmc.Volume, dir sdmmc.Directory) (*directory, error) {
	v, err := c.volume(vol)
	if err != nil {
		return nil, err
	}
	d, ok := dir.(*directory)
	if !ok || d.vol != v {
		return nil, sdmmc.ErrInvalidHandle
	}
	if _, open := c.handles[d]; !open {
		return nil, sdmmc.ErrInvalidHandle
	}
	return d, nil
}

func (c *Controller) file(vol sdmmc.Volume, f sdmmc.File) (*file, error) {
	v, err := c.volume(vol)
	if err != nil {
		return nil, err
	}
	fh, ok := f.(*file)
	if !ok || fh.dir.vol != v {
		return nil, sdmmc.ErrInvalidHandle
	}
	if _, open := c.handles[fh]; !open {
		return nil, sdmmc.ErrInvalidHandle
	}
	return fh, nil
}
