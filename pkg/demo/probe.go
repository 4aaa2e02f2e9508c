package demo

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/display"
	fx "github.com/robotalks/sdlog/pkg/framework"
	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// Probe checks a card can be reached and volume 0 holds a FAT
// filesystem.
type Probe struct {
	Card    sdmmc.Controller
	Display display.Display
}

// NewProbe creates a Probe.
func NewProbe(card sdmmc.Controller, disp display.Display) *Probe {
	return &Probe{Card: card, Display: disp}
}

// Report probes the card once. Every handle is released and the card
// deinitialized before returning.
func Report(card sdmmc.Controller) string {
	var out strings.Builder
	dev := card.Device()
	defer dev.Deinit()
	if err := dev.Init(); err != nil {
		glog.V(1).Infof("card init: %v", err)
		out.WriteString("SD Card Error\nCannot connect")
		return out.String()
	}
	if size, err := dev.CardSizeBytes(); err != nil {
		glog.V(1).Infof("card size: %v", err)
		out.WriteString("SD Card Connected\nCannot read size\n")
	} else {
		fmt.Fprintf(&out, "SD OK: %d MB\n", size>>20)
	}
	vol, err := card.MountVolume(0)
	if err != nil {
		glog.V(1).Infof("mount volume 0: %v", err)
		out.WriteString("Vol 0 cannot read FAT")
		return out.String()
	}
	if err = card.ReleaseVolume(vol); err != nil {
		glog.Warningf("release volume 0 error: %v", err)
	}
	out.WriteString("Get FAT Volume 0: OK")
	return out.String()
}

// Control implements framework.Controller. The probe runs once, further
// iterations keep the result on screen.
func (p *Probe) Control(cc fx.ControlContext) error {
	if cc.Iteration() > 0 {
		return nil
	}
	return p.Display.ShowText(Report(p.Card))
}

// AddToLoop implements framework.LoopAdder.
func (p *Probe) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, p)
}
