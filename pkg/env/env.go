// Package env builds cards and displays from command line flags and
// environment variables shared by all binaries.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/display"
	mqttdisplay "github.com/robotalks/sdlog/pkg/display/mqtt"
	fx "github.com/robotalks/sdlog/pkg/framework"
	"github.com/robotalks/sdlog/pkg/sdmmc"
	"github.com/robotalks/sdlog/pkg/sdmmc/image"
	"github.com/robotalks/sdlog/pkg/sdmmc/memory"
)

// Card kinds.
const (
	CardImage  = "image"
	CardMemory = "mem"
)

// Config provides common options of the binaries.
type Config struct {
	// Card selects the card kind: image or mem.
	Card string
	// Image is the path of the card image when Card is image.
	Image string
	// MQTTBrokerURL enables publishing frames when not empty.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
	// ID identifies this logger on MQTT.
	ID string
	// WebSocketAddr enables the websocket display when not empty.
	WebSocketAddr string
	// Quiet disables the console display.
	Quiet bool
	// Interval is the delay between loop iterations.
	Interval time.Duration
}

var defaultConfig = Config{
	Card:     CardImage,
	Image:    "sdcard.img",
	Interval: fx.DefaultInterval,
}

func init() {
	if val := os.Getenv("SDLOG_CARD"); val != "" {
		defaultConfig.Card = val
	}
	if val := os.Getenv("SDLOG_IMAGE"); val != "" {
		defaultConfig.Image = val
	}
	if val := os.Getenv("SDLOG_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("SDLOG_ID"); val != "" {
		defaultConfig.ID = val
	} else {
		defaultConfig.ID = MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Card, "card", defaultConfig.Card, "Card kind: image or mem.")
	flag.StringVar(&defaultConfig.Image, "image", defaultConfig.Image, "Path of the card image.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL to publish frames to.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Logger ID.")
	flag.StringVar(&defaultConfig.WebSocketAddr, "ws", defaultConfig.WebSocketAddr, "Listen address of the websocket display.")
	flag.BoolVar(&defaultConfig.Quiet, "quiet", defaultConfig.Quiet, "Don't show frames on the console.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Delay between iterations.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is what a demo runs with.
type Env struct {
	Config *Config
	// Clock is the TimeSource of Card.
	Clock   *clock.ClockData
	Card    sdmmc.Controller
	Display display.Multi

	runnables []fx.Runnable
}

// NewCard creates the card selected by the config, stamping files with clk.
func (c *Config) NewCard(clk sdmmc.TimeSource) (sdmmc.Controller, error) {
	switch c.Card {
	case CardImage:
		if c.Image == "" {
			return nil, fmt.Errorf("card image path required")
		}
		return image.Open(c.Image, clk), nil
	case CardMemory:
		card := memory.New()
		card.Clock = clk
		return card, nil
	default:
		return nil, fmt.Errorf("unknown card kind %q", c.Card)
	}
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	e := &Env{Config: c, Clock: &clock.ClockData{}}
	card, err := c.NewCard(e.Clock)
	if err != nil {
		return nil, err
	}
	e.Card = card
	if !c.Quiet {
		e.Display = append(e.Display, &display.Console{W: os.Stdout})
	}
	if c.WebSocketAddr != "" {
		ws := display.NewWebSocket(c.WebSocketAddr)
		e.Display = append(e.Display, ws)
		e.runnables = append(e.runnables, fx.NamedRun("websocket", ws))
	}
	if c.MQTTBrokerURL != "" {
		if c.ID == "" {
			return nil, fmt.Errorf("logger id required to publish to MQTT")
		}
		md, err := mqttdisplay.New(c.MQTTBrokerURL, c.ID)
		if err != nil {
			return nil, fmt.Errorf("create MQTT display error: %w", err)
		}
		md.Meta["card"] = c.Card
		e.Display = append(e.Display, md)
		e.runnables = append(e.runnables, fx.NamedRun("mqtt", md))
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// NewLoop creates a loop running at the configured interval.
func (c *Config) NewLoop() *fx.Loop {
	loop := fx.NewLoop()
	loop.Interval = c.Interval
	return loop
}

// AddToLoop implements framework.LoopAdder, adding the display servers.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(e.runnables...)
}

// Indicator returns the status indicator of the host, which only logs
// level changes.
func (e *Env) Indicator() fx.Indicator {
	return fx.IndicatorFunc(func(high bool) {
		if high {
			glog.V(1).Info("indicator high")
		} else {
			glog.Warning("indicator low")
		}
	})
}
