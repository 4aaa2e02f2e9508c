// Package memory provides an in-memory SD card with fault injection.
package memory

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// DefaultCardSize is the reported capacity of a Card.
const DefaultCardSize uint64 = 64 << 20

// Faults are errors injected into Card operations.
// A nil error means the operation behaves normally.
type Faults struct {
	Init      error
	CardSize  error
	Mount     map[sdmmc.VolumeIdx]error
	Release   error
	RootDir   error
	Open      error
	Write     error
	CloseFile error
	CloseDir  error
	// ShortWrite limits every write to the given number of bytes when > 0.
	ShortWrite int
}

// Card is an SD card kept in memory. It implements both
// sdmmc.BlockDevice and sdmmc.Controller.
type Card struct {
	Faults Faults
	Size   uint64
	// Clock stamps file modifications, may be nil.
	Clock sdmmc.TimeSource
	// StrictNames rejects names which are not valid 8.3 short names.
	StrictNames bool

	volumes     []*volumeData
	initialized bool
	handles     map[interface{}]struct{}
	calls       []string
	lock        sync.Mutex
}

type volumeData struct {
	files map[string]*fileData
}

type fileData struct {
	name     string
	data     []byte
	modified sdmmc.Timestamp
}

type volumeHandle struct {
	idx  sdmmc.VolumeIdx
	data *volumeData
}

func (v *volumeHandle) Index() sdmmc.VolumeIdx { return v.idx }

type dirHandle struct {
	vol *volumeHandle
}

func (d *dirHandle) Path() string { return "/" }

type fileHandle struct {
	dir  *dirHandle
	file *fileData
	mode sdmmc.Mode
	pos  int
}

func (f *fileHandle) Name() string     { return f.file.name }
func (f *fileHandle) Mode() sdmmc.Mode { return f.mode }

var (
	_ sdmmc.BlockDevice = (*Card)(nil)
	_ sdmmc.Controller  = (*Card)(nil)
)

// New creates a Card with a single mountable volume at index 0.
func New() *Card {
	return NewWithVolumes(true)
}

// NewWithVolumes creates a Card with one volume slot per argument.
// A false slot can't be mounted.
func NewWithVolumes(mountable ...bool) *Card {
	c := &Card{
		Size:    DefaultCardSize,
		handles: make(map[interface{}]struct{}),
	}
	for _, ok := range mountable {
		if ok {
			c.volumes = append(c.volumes, &volumeData{files: make(map[string]*fileData)})
		} else {
			c.volumes = append(c.volumes, nil)
		}
	}
	return c
}

// Device implements sdmmc.Controller.
func (c *Card) Device() sdmmc.BlockDevice {
	return c
}

// Init implements sdmmc.BlockDevice.
func (c *Card) Init() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("init")
	if err := c.Faults.Init; err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Deinit implements sdmmc.BlockDevice.
func (c *Card) Deinit() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("deinit")
	c.initialized = false
}

// CardSizeBytes implements sdmmc.BlockDevice.
func (c *Card) CardSizeBytes() (uint64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.initialized {
		return 0, sdmmc.ErrNotInitialized
	}
	if err := c.Faults.CardSize; err != nil {
		return 0, err
	}
	return c.Size, nil
}

// MountVolume implements sdmmc.Controller.
func (c *Card) MountVolume(idx sdmmc.VolumeIdx) (sdmmc.Volume, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("mount %d", idx)
	if !c.initialized {
		return nil, sdmmc.ErrNotInitialized
	}
	if err := c.Faults.Mount[idx]; err != nil {
		return nil, err
	}
	if idx < 0 || int(idx) >= len(c.volumes) || c.volumes[idx] == nil {
		return nil, sdmmc.ErrNoSuchVolume
	}
	vol := &volumeHandle{idx: idx, data: c.volumes[idx]}
	c.handles[vol] = struct{}{}
	return vol, nil
}

// ReleaseVolume implements sdmmc.Controller.
func (c *Card) ReleaseVolume(vol sdmmc.Volume) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("release %d", vol.Index())
	if _, err := c.volume(vol); err != nil {
		return err
	}
	delete(c.handles, vol)
	return c.Faults.Release
}

// OpenRootDir implements sdmmc.Controller.
func (c *Card) OpenRootDir(vol sdmmc.Volume) (sdmmc.Directory, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("rootdir")
	v, err := c.volume(vol)
	if err != nil {
		return nil, err
	}
	if err = c.Faults.RootDir; err != nil {
		return nil, err
	}
	dir := &dirHandle{vol: v}
	c.handles[dir] = struct{}{}
	return dir, nil
}

// OpenFileInDir implements sdmmc.Controller.
func (c *Card) OpenFileInDir(vol sdmmc.Volume, dir sdmmc.Directory, name string, mode sdmmc.Mode) (sdmmc.File, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("open %s", name)
	d, err := c.dir(vol, dir)
	if err != nil {
		return nil, err
	}
	if err = c.Faults.Open; err != nil {
		return nil, err
	}
	if c.StrictNames && !sdmmc.IsShortName(name) {
		return nil, fmt.Errorf("%q: %w", name, sdmmc.ErrInvalidName)
	}
	key := strings.ToUpper(name)
	file := d.vol.data.files[key]
	switch {
	case file == nil && mode == sdmmc.ModeReadOnly:
		return nil, sdmmc.ErrNotFound
	case file == nil:
		file = &fileData{name: name, modified: c.timestamp()}
		d.vol.data.files[key] = file
	case mode == sdmmc.ModeReadWriteCreateOrTruncate:
		file.data = nil
		file.modified = c.timestamp()
	}
	f := &fileHandle{dir: d, file: file, mode: mode}
	if mode == sdmmc.ModeReadWriteCreateOrAppend {
		f.pos = len(file.data)
	}
	c.handles[f] = struct{}{}
	return f, nil
}

// Read implements sdmmc.Controller.
func (c *Card) Read(vol sdmmc.Volume, file sdmmc.File, p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	f, err := c.file(vol, file)
	if err != nil {
		return 0, err
	}
	if f.pos >= len(f.file.data) {
		return 0, io.EOF
	}
	n := copy(p, f.file.data[f.pos:])
	f.pos += n
	return n, nil
}

// Write implements sdmmc.Controller.
func (c *Card) Write(vol sdmmc.Volume, file sdmmc.File, p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("write %s", file.Name())
	f, err := c.file(vol, file)
	if err != nil {
		return 0, err
	}
	if !f.mode.Writable() {
		return 0, sdmmc.ErrReadOnly
	}
	if err = c.Faults.Write; err != nil {
		return 0, err
	}
	if limit := c.Faults.ShortWrite; limit > 0 && len(p) > limit {
		p = p[:limit]
	}
	end := f.pos + len(p)
	if end > len(f.file.data) {
		data := make([]byte, end)
		copy(data, f.file.data)
		f.file.data = data
	}
	copy(f.file.data[f.pos:], p)
	f.pos = end
	f.file.modified = c.timestamp()
	return len(p), nil
}

// CloseFile implements sdmmc.Controller.
func (c *Card) CloseFile(vol sdmmc.Volume, file sdmmc.File) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("closefile %s", file.Name())
	if _, err := c.file(vol, file); err != nil {
		return err
	}
	delete(c.handles, file)
	return c.Faults.CloseFile
}

// CloseDir implements sdmmc.Controller.
func (c *Card) CloseDir(vol sdmmc.Volume, dir sdmmc.Directory) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record("closedir")
	if _, err := c.dir(vol, dir); err != nil {
		return err
	}
	delete(c.handles, dir)
	return c.Faults.CloseDir
}

// ListDir implements sdmmc.Controller.
func (c *Card) ListDir(vol sdmmc.Volume, dir sdmmc.Directory) ([]sdmmc.DirEntry, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	d, err := c.dir(vol, dir)
	if err != nil {
		return nil, err
	}
	entries := make([]sdmmc.DirEntry, 0, len(d.vol.data.files))
	for _, f := range d.vol.data.files {
		entries = append(entries, sdmmc.DirEntry{Name: f.name, Size: int64(len(f.data))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ReadFile returns a copy of the content of name on volume idx.
func (c *Card) ReadFile(idx sdmmc.VolumeIdx, name string) ([]byte, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if idx < 0 || int(idx) >= len(c.volumes) || c.volumes[idx] == nil {
		return nil, false
	}
	f := c.volumes[idx].files[strings.ToUpper(name)]
	if f == nil {
		return nil, false
	}
	return append([]byte{}, f.data...), true
}

// ModTime returns the last modification timestamp of name on volume idx.
func (c *Card) ModTime(idx sdmmc.VolumeIdx, name string) (sdmmc.Timestamp, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if idx < 0 || int(idx) >= len(c.volumes) || c.volumes[idx] == nil {
		return sdmmc.Timestamp{}, false
	}
	f := c.volumes[idx].files[strings.ToUpper(name)]
	if f == nil {
		return sdmmc.Timestamp{}, false
	}
	return f.modified, true
}

// Initialized indicates the card is between Init and Deinit.
func (c *Card) Initialized() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.initialized
}

// OpenHandles returns the number of volumes, directories and files not
// yet released.
func (c *Card) OpenHandles() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.handles)
}

// Calls returns the journal of operations invoked on the card.
func (c *Card) Calls() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string{}, c.calls...)
}

// ResetCalls clears the journal.
func (c *Card) ResetCalls() {
	c.lock.Lock()
	c.calls = nil
	c.lock.Unlock()
}

func (c *Card) record(format string, args ...interface{}) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *Card) timestamp() sdmmc.Timestamp {
	if c.Clock == nil {
		return sdmmc.Timestamp{}
	}
	return c.Clock.Timestamp()
}

func (c *Card) volume(vol sdmmc.Volume) (*volumeHandle, error) {
	if !c.initialized {
		return nil, sdmmc.ErrNotInitialized
	}
	v, ok := vol.(*volumeHandle)
	if !ok {
		return nil, sdmmc.ErrInvalidHandle
	}
	if _, open := c.handles[v]; !open {
		return nil, sdmmc.ErrInvalidHandle
	}
	return v, nil
}

func (c *Card) dir(vol sdmmc.Volume, dir sdmmc.Directory) (*dirHandle, error) {
	v, err := c.volume(vol)
	if err != nil {
		return nil, err
	}
	d, ok := dir.(*dirHandle)
	if !ok || d.vol != v {
		return nil, sdmmc.ErrInvalidHandle
	}
	if _, open := c.handles[d]; !open {
		return nil, sdmmc.ErrInvalidHandle
	}
	return d, nil
}

func (c *Card) file(vol sdmmc.Volume, file sdmmc.File) (*fileHandle, error) {
	v, err := c.volume(vol)
	if err != nil {
		return nil, err
	}
	f, ok := file.(*fileHandle)
	if !ok || f.dir.vol != v {
		return nil, sdmmc.ErrInvalidHandle
	}
	if _, open := c.handles[f]; !open {
		return nil, sdmmc.ErrInvalidHandle
	}
	return f, nil
}
