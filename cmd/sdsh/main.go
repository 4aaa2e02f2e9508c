package main

//go-build: CGO_ENABLED=0

import (
	"github.com/robotalks/sdlog/pkg/cli/sh"
	"github.com/robotalks/sdlog/pkg/env"
	"github.com/robotalks/sdlog/pkg/sdlog"
)

func init() {
	env.SetupFlags()
	sdlog.SetupFlags()
}

func main() {
	sh.Main()
}
