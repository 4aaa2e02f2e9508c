package image

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sdlog/pkg/sdlog"
	"github.com/robotalks/sdlog/pkg/sdmmc"
)

const testImageSize = 64 << 20

func readAll(t *testing.T, c *Controller, name string) string {
	require.NoError(t, c.Device().Init())
	defer c.Device().Deinit()
	vol, err := c.MountVolume(0)
	if err != nil {
		vol, err = c.MountVolume(1)
	}
	require.NoError(t, err)
	defer c.ReleaseVolume(vol)
	dir, err := c.OpenRootDir(vol)
	require.NoError(t, err)
	defer c.CloseDir(vol, dir)
	f, err := c.OpenFileInDir(vol, dir, name, sdmmc.ModeReadOnly)
	require.NoError(t, err)
	defer c.CloseFile(vol, f)
	var content []byte
	buf := make([]byte, 64)
	for {
		n, err := c.Read(vol, f, buf)
		content = append(content, buf[:n]...)
		if err != nil || n == 0 {
			break
		}
	}
	return string(content)
}

func TestImageAppend(t *testing.T) {
	for _, layout := range []Layout{LayoutSuperfloppy, LayoutMBR} {
		t.Run(layout.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "card.img")
			require.NoError(t, Format(path, testImageSize, layout, ""))

			ctl := Open(path, nil)
			require.NoError(t, sdlog.Append(ctl, "20240101.LOG", "12:00:00 1 A\n"))
			require.NoError(t, sdlog.Append(ctl, "20240101.LOG", "12:00:05 2 A\n"))
			require.False(t, ctl.dev.Initialized())
			require.Equal(t, 0, ctl.OpenHandles())

			require.Equal(t, "12:00:00 1 A\n12:00:05 2 A\n", readAll(t, ctl, "20240101.LOG"))
		})
	}
}

func TestImageMissing(t *testing.T) {
	ctl := Open(filepath.Join(t.TempDir(), "missing.img"), nil)
	err := sdlog.Append(ctl, "A.LOG", "x\n")
	require.True(t, errors.Is(err, sdlog.ErrCannotConnect))
	require.False(t, ctl.dev.Initialized())
}

func TestImageNotInitialized(t *testing.T) {
	ctl := Open(filepath.Join(t.TempDir(), "card.img"), nil)
	_, err := ctl.MountVolume(0)
	require.Equal(t, sdmmc.ErrNotInitialized, err)
	_, err = ctl.Device().CardSizeBytes()
	require.Equal(t, sdmmc.ErrNotInitialized, err)
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("mbr")
	require.NoError(t, err)
	require.Equal(t, LayoutMBR, l)
	l, err = ParseLayout("")
	require.NoError(t, err)
	require.Equal(t, LayoutSuperfloppy, l)
	_, err = ParseLayout("gpt")
	require.Error(t, err)
}
