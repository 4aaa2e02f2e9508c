// Package sdlog appends lines of text to files on an SD card.
package sdlog

import (
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// DefaultMaxVolumes is the number of volume indices probed by default.
const DefaultMaxVolumes = 4

// Logger appends data to files in the root directory of the first
// mountable volume. A Logger holds no state between calls; the card is
// initialized and released on every Append.
type Logger struct {
	// MaxVolumes bounds the volume probing to indices [0, MaxVolumes).
	MaxVolumes int
}

// New creates a Logger with defaults.
func New() *Logger {
	return &Logger{MaxVolumes: defaultConfig.MaxVolumes}
}

// Append appends fileData to fileName using a default Logger.
func Append(ctl sdmmc.Controller, fileName, fileData string) error {
	return New().Append(ctl, fileName, fileData)
}

// Append appends fileData to fileName, creating the file if absent.
// Every handle opened is closed before returning and the card is
// deinitialized exactly once, whatever the outcome. Errors from closing
// handles are logged and never replace the returned error.
func (l *Logger) Append(ctl sdmmc.Controller, fileName, fileData string) error {
	dev := ctl.Device()
	defer dev.Deinit()
	if err := dev.Init(); err != nil {
		return &AppendError{Kind: CannotConnect, Err: err}
	}

	vol, err := l.mountVolume(ctl)
	if err != nil {
		return &AppendError{Kind: NoSuitableVolume, Err: err}
	}
	defer func() {
		if err := ctl.ReleaseVolume(vol); err != nil {
			glog.Warningf("release volume %d error: %v", vol.Index(), err)
		}
	}()

	dir, err := ctl.OpenRootDir(vol)
	if err != nil {
		return &AppendError{Kind: CannotReadRootDir, Err: err}
	}
	defer func() {
		if err := ctl.CloseDir(vol, dir); err != nil {
			glog.Warningf("close dir %s error: %v", dir.Path(), err)
		}
	}()

	file, err := ctl.OpenFileInDir(vol, dir, fileName, sdmmc.ModeReadWriteCreateOrAppend)
	if err != nil {
		return &AppendError{Kind: CannotOpenFile, Err: err}
	}
	defer func() {
		if err := ctl.CloseFile(vol, file); err != nil {
			glog.Warningf("close file %q error: %v", fileName, err)
		}
	}()

	data := []byte(fileData)
	n, err := ctl.Write(vol, file, data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &AppendError{Kind: CannotWriteToOpenedFile, Err: err}
	}
	glog.V(3).Infof("appended %d bytes to %q on volume %d", n, fileName, vol.Index())
	return nil
}

func (l *Logger) mountVolume(ctl sdmmc.Controller) (sdmmc.Volume, error) {
	maxVolumes := l.MaxVolumes
	if maxVolumes <= 0 {
		maxVolumes = DefaultMaxVolumes
	}
	var lastErr error
	for idx := sdmmc.VolumeIdx(0); int(idx) < maxVolumes; idx++ {
		vol, err := ctl.MountVolume(idx)
		if err == nil {
			return vol, nil
		}
		glog.V(4).Infof("volume %d not mountable: %v", idx, err)
		lastErr = err
	}
	return nil, lastErr
}
