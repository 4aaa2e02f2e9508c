package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/demo"
	"github.com/robotalks/sdlog/pkg/env"
	fx "github.com/robotalks/sdlog/pkg/framework"
)

var utc bool

func init() {
	env.SetupFlags()
	flag.BoolVar(&utc, "utc", utc, "Show UTC instead of local time.")
}

func main() {
	flag.Parse()

	e := env.NewConfig().MustNewEnv()
	e.Display.ShowText("Starting up...")
	rtc := &clock.SystemRTC{}
	if utc {
		rtc.Location = time.UTC
	}
	view := demo.NewClockView(rtc, e.Display, e.Indicator())
	loop := e.Config.NewLoop().Add(e, view)
	fx.NewSupervisor(nil).RunOrFail(loop)
}
