package image

import (
	"fmt"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/golang/glog"
)

// Layout is how a card image is organized.
type Layout int

// Supported layouts.
const (
	// LayoutSuperfloppy puts one FAT filesystem on the whole card.
	LayoutSuperfloppy Layout = iota
	// LayoutMBR puts one FAT partition behind an MBR partition table.
	LayoutMBR
)

const (
	sectorSize     = 512
	partitionStart = 2048 // 1 MiB aligned, as SD formatters do
)

// DefaultLabel is the volume label of formatted images.
const DefaultLabel = "SDLOG"

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case LayoutSuperfloppy:
		return "superfloppy"
	case LayoutMBR:
		return "mbr"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout parses the String form of a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "superfloppy", "":
		return LayoutSuperfloppy, nil
	case "mbr":
		return LayoutMBR, nil
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

// Format creates a new image of size bytes at path with a FAT32
// filesystem. The file must not exist.
func Format(path string, size int64, layout Layout, label string) error {
	if label == "" {
		label = DefaultLabel
	}
	dsk, err := diskfs.Create(path, size, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		return fmt.Errorf("create image %q: %w", path, err)
	}
	defer dsk.File.Close()

	fsSpec := disk.FilesystemSpec{
		Partition:   0,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: label,
	}
	if layout == LayoutMBR {
		sectors := size/sectorSize - partitionStart
		if sectors <= 0 {
			return fmt.Errorf("image size %d too small for a partition table", size)
		}
		table := &mbr.Table{
			LogicalSectorSize:  sectorSize,
			PhysicalSectorSize: sectorSize,
			Partitions: []*mbr.Partition{
				{
					Bootable: false,
					Type:     mbr.Fat32LBA,
					Start:    partitionStart,
					Size:     uint32(sectors),
				},
			},
		}
		if err = dsk.Partition(table); err != nil {
			return fmt.Errorf("partition image %q: %w", path, err)
		}
		fsSpec.Partition = 1
	}
	if _, err = dsk.CreateFilesystem(fsSpec); err != nil {
		return fmt.Errorf("create filesystem on %q: %w", path, err)
	}
	glog.Infof("formatted %q: %d bytes, %s, label %q", path, size, layout, label)
	return nil
}
