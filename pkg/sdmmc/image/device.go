// Package image implements an SD card backed by a raw disk image.
//
// The image is what `dd if=/dev/mmcblk0` produces from a real card: either
// a FAT filesystem spanning the whole card (superfloppy) or an MBR
// partition table with FAT partitions. The filesystem driver is go-diskfs.
package image

import (
	"fmt"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// Device is a card image file. The file is only held open between Init
// and Deinit so other processes can use it between appends.
type Device struct {
	Path string

	disk *disk.Disk
}

var _ sdmmc.BlockDevice = (*Device)(nil)

// NewDevice creates a Device for the image at path.
func NewDevice(path string) *Device {
	return &Device{Path: path}
}

// Init implements sdmmc.BlockDevice.
func (d *Device) Init() error {
	if d.disk != nil {
		return nil
	}
	dsk, err := diskfs.Open(d.Path)
	if err != nil {
		return fmt.Errorf("open image %q: %w", d.Path, err)
	}
	glog.V(3).Infof("image %q opened, %d bytes", d.Path, dsk.Size)
	d.disk = dsk
	return nil
}

// Deinit implements sdmmc.BlockDevice.
func (d *Device) Deinit() {
	if d.disk == nil {
		return
	}
	if err := d.disk.File.Close(); err != nil {
		glog.Warningf("close image %q error: %v", d.Path, err)
	}
	d.disk = nil
	glog.V(3).Infof("image %q closed", d.Path)
}

// CardSizeBytes implements sdmmc.BlockDevice.
func (d *Device) CardSizeBytes() (uint64, error) {
	if d.disk == nil {
		return 0, sdmmc.ErrNotInitialized
	}
	return uint64(d.disk.Size), nil
}

// Initialized indicates the image is open.
func (d *Device) Initialized() bool {
	return d.disk != nil
}
