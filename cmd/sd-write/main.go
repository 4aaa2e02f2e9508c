package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/demo"
	"github.com/robotalks/sdlog/pkg/env"
	fx "github.com/robotalks/sdlog/pkg/framework"
	"github.com/robotalks/sdlog/pkg/sdlog"
)

func init() {
	env.SetupFlags()
	sdlog.SetupFlags()
}

func main() {
	flag.Parse()

	e := env.NewConfig().MustNewEnv()
	e.Display.ShowText("Initializing ...")
	w := demo.NewWriter(e.Card, &clock.SystemRTC{}, e.Clock, e.Display)
	w.Logger = sdlog.NewConfig().NewLogger()
	loop := e.Config.NewLoop().Add(e, w)
	fx.NewSupervisor(e.Indicator()).RunOrFail(loop)
}
