package sdlog

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// ReadFile reads fileName from the volume Append writes to. Errors
// match the sentinel of the failed stage and the driver error.
func (l *Logger) ReadFile(ctl sdmmc.Controller, fileName string) ([]byte, error) {
	var content []byte
	err := l.inRootDir(ctl, func(vol sdmmc.Volume, dir sdmmc.Directory) error {
		file, err := ctl.OpenFileInDir(vol, dir, fileName, sdmmc.ModeReadOnly)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCannotOpenFile, err)
		}
		defer func() {
			if err := ctl.CloseFile(vol, file); err != nil {
				glog.Warningf("close file %q error: %v", fileName, err)
			}
		}()
		buf := make([]byte, 512)
		for {
			n, err := ctl.Read(vol, file, buf)
			content = append(content, buf[:n]...)
			if err == io.EOF || (err == nil && n == 0) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read %q: %w", fileName, err)
			}
		}
	})
	return content, err
}

// List lists the root directory of the volume Append writes to.
func (l *Logger) List(ctl sdmmc.Controller) (entries []sdmmc.DirEntry, err error) {
	err = l.inRootDir(ctl, func(vol sdmmc.Volume, dir sdmmc.Directory) (err error) {
		entries, err = ctl.ListDir(vol, dir)
		return
	})
	return
}

func (l *Logger) inRootDir(ctl sdmmc.Controller, fn func(sdmmc.Volume, sdmmc.Directory) error) error {
	dev := ctl.Device()
	defer dev.Deinit()
	if err := dev.Init(); err != nil {
		return fmt.Errorf("%w: %w", ErrCannotConnect, err)
	}
	vol, err := l.mountVolume(ctl)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoSuitableVolume, err)
	}
	defer func() {
		if err := ctl.ReleaseVolume(vol); err != nil {
			glog.Warningf("release volume %d error: %v", vol.Index(), err)
		}
	}()
	dir, err := ctl.OpenRootDir(vol)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCannotReadRootDir, err)
	}
	defer func() {
		if err := ctl.CloseDir(vol, dir); err != nil {
			glog.Warningf("close dir %s error: %v", dir.Path(), err)
		}
	}()
	return fn(vol, dir)
}
