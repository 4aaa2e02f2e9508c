// Package display shows status text the way the demo boards show it on
// their small screens.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	fx "github.com/robotalks/sdlog/pkg/framework"
)

// Screen geometry of the 128x64 panel with a 6x10 font.
const (
	Columns = 21
	Rows    = 6
)

// Display shows a frame of text, replacing the previous one.
type Display interface {
	ShowText(text string) error
}

// Func is the func form of Display.
type Func func(text string) error

// ShowText implements Display.
func (f Func) ShowText(text string) error {
	return f(text)
}

// Console writes frames boxed to W.
type Console struct {
	W io.Writer
}

// ShowText implements Display.
func (c *Console) ShowText(text string) error {
	_, err := io.WriteString(c.W, Render(text))
	return err
}

// Render boxes text as it's laid out on the screen. Lines longer than
// the screen are kept so nothing is lost on a console.
func Render(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	width := Columns
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}
	border := "+" + strings.Repeat("-", width) + "+\n"
	var sb strings.Builder
	sb.WriteString(border)
	for _, line := range lines {
		fmt.Fprintf(&sb, "|%-*s|\n", width, line)
	}
	sb.WriteString(border)
	return sb.String()
}

// Buffer keeps the frames shown.
type Buffer struct {
	lock   sync.Mutex
	frames []string
}

// ShowText implements Display.
func (b *Buffer) ShowText(text string) error {
	b.lock.Lock()
	b.frames = append(b.frames, text)
	b.lock.Unlock()
	return nil
}

// Last returns the last frame, or empty if nothing is shown.
func (b *Buffer) Last() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.frames) == 0 {
		return ""
	}
	return b.frames[len(b.frames)-1]
}

// Frames returns all frames shown.
func (b *Buffer) Frames() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string(nil), b.frames...)
}

// Multi shows each frame on all displays.
type Multi []Display

// ShowText implements Display.
func (m Multi) ShowText(text string) error {
	var errs fx.AggregatedError
	for _, d := range m {
		errs.Add(d.ShowText(text))
	}
	return errs.Aggregate()
}
