package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/sdlog/pkg/demo"
	"github.com/robotalks/sdlog/pkg/env"
	fx "github.com/robotalks/sdlog/pkg/framework"
)

var hold bool

func init() {
	env.SetupFlags()
	flag.BoolVar(&hold, "hold", hold, "Keep the result on the displays until stopped.")
}

func main() {
	flag.Parse()

	e := env.NewConfig().MustNewEnv()
	e.Display.ShowText("Initializing ...")
	loop := e.Config.NewLoop().Add(e, demo.NewProbe(e.Card, e.Display))
	if !hold {
		loop.MaxIterations = 1
	}
	fx.NewSupervisor(e.Indicator()).RunOrFail(loop)
}
