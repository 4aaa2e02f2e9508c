package demo

import (
	"errors"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/display"
	fx "github.com/robotalks/sdlog/pkg/framework"
	"github.com/robotalks/sdlog/pkg/sdlog"
	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// Writer appends one timestamped line to the daily log file every
// iteration and shows what happened.
type Writer struct {
	Card    sdmmc.Controller
	RTC     clock.RTC
	Clock   *clock.ClockData
	Display display.Display
	Logger  *sdlog.Logger

	counter int
	text    strings.Builder
}

// NewWriter creates a Writer. clk should be the TimeSource of card so
// files are stamped with the RTC time.
func NewWriter(card sdmmc.Controller, rtc clock.RTC, clk *clock.ClockData, disp display.Display) *Writer {
	if clk == nil {
		clk = &clock.ClockData{}
	}
	return &Writer{
		Card:    card,
		RTC:     rtc,
		Clock:   clk,
		Display: disp,
		Logger:  sdlog.New(),
	}
}

// Counter returns the number of the next line.
func (w *Writer) Counter() int {
	return w.counter
}

// AddToLoop implements framework.LoopAdder.
func (w *Writer) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, fx.ControlFunc(w.sense))
	l.AddController(fx.PrLvControl, fx.ControlFunc(w.write))
	l.AddController(fx.PrLvOutput, fx.ControlFunc(w.show))
}

func (w *Writer) sense(fx.ControlContext) error {
	w.text.Reset()
	w.Clock.Update(w.RTC)
	w.text.WriteString(clock.DateTimeText(w.Clock))
	w.text.WriteString("\n")
	return nil
}

func (w *Writer) write(fx.ControlContext) error {
	name := clock.FileName(w.Clock)
	line := clock.FileLine(w.Clock, w.counter)
	w.counter++
	if err := w.Logger.Append(w.Card, name, line); err != nil {
		glog.Warningf("append %q: %v", name, err)
		w.text.WriteString(ErrorText(err))
		return nil
	}
	w.text.WriteString("Line written\n" + name + "\n" + line)
	return nil
}

func (w *Writer) show(fx.ControlContext) error {
	return w.Display.ShowText(w.text.String())
}

// ErrorText describes an Append failure for the screen: the failed
// stage, then the driver error when there is one.
func ErrorText(err error) string {
	var appendErr *sdlog.AppendError
	if !errors.As(err, &appendErr) {
		return "Append ERR\n" + err.Error() + "\n"
	}
	text := "Append ERR\n" + appendErr.Kind.String() + "\n"
	if appendErr.Err != nil {
		text += appendErr.Err.Error() + "\n"
	}
	return text
}
