package demo

import (
	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/display"
	fx "github.com/robotalks/sdlog/pkg/framework"
)

// ClockView shows the raw RTC reading. The indicator, if any, is held
// high while the RTC is read and the screen refreshed.
type ClockView struct {
	RTC       clock.RTC
	Display   display.Display
	Indicator fx.Indicator
}

// NewClockView creates a ClockView.
func NewClockView(rtc clock.RTC, disp display.Display, ind fx.Indicator) *ClockView {
	return &ClockView{RTC: rtc, Display: disp, Indicator: ind}
}

// Control implements framework.Controller.
func (v *ClockView) Control(fx.ControlContext) error {
	if v.Indicator != nil {
		v.Indicator.Set(true)
		defer v.Indicator.Set(false)
	}
	dt, err := v.RTC.DateTime()
	if err != nil {
		return v.Display.ShowText(err.Error())
	}
	return v.Display.ShowText(clock.RenderDate(dt))
}

// AddToLoop implements framework.LoopAdder.
func (v *ClockView) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvOutput, v)
}
