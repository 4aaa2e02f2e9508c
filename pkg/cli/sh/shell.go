// Package sh provides an interactive shell over a card.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sdlog/pkg/clock"
	"github.com/robotalks/sdlog/pkg/demo"
	"github.com/robotalks/sdlog/pkg/env"
	"github.com/robotalks/sdlog/pkg/sdlog"
	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *env.Config
	Card   sdmmc.Controller
	Logger *sdlog.Logger
	Clock  *clock.ClockData
	RTC    clock.RTC

	counter int
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&AppendCmd,
		&LogCmd,
		&CatCmd,
		&ListCmd,
		&ProbeCmd,
		&FormatCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers more commands, used during init.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a shell over the card of conf.
func New(conf *env.Config) (*Shell, error) {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Config:      conf,
		Logger:      sdlog.New(),
		Clock:       &clock.ClockData{},
		RTC:         &clock.SystemRTC{},
	}
	card, err := conf.NewCard(s.Clock)
	if err != nil {
		return nil, err
	}
	s.Card = card
	s.Shell = ishell.New()
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", conf.Card))
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Append appends data as a line to name.
func (s *Shell) Append(name, data string) error {
	if !strings.HasSuffix(data, "\n") {
		data += "\n"
	}
	return s.Logger.Append(s.Card, name, data)
}

// Log appends a timestamped line to today's log file like the writer
// demo does, returning the file name.
func (s *Shell) Log(data string) (string, error) {
	s.Clock.Update(s.RTC)
	name := clock.FileName(s.Clock)
	line := strings.TrimSuffix(clock.FileLine(s.Clock, s.counter), "\n")
	if data != "" {
		line += " " + data
	}
	s.counter++
	return name, s.Append(name, line)
}

// Cat writes the content of name to w.
func (s *Shell) Cat(w io.Writer, name string) error {
	data, err := s.Logger.ReadFile(s.Card, name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// List writes the root directory listing to w.
func (s *Shell) List(w io.Writer) error {
	entries, err := s.Logger.List(s.Card)
	if err != nil {
		return err
	}
	if s.OutputJSON {
		if entries == nil {
			entries = []sdmmc.DirEntry{}
		}
		return json.NewEncoder(w).Encode(entries)
	}
	for _, entry := range entries {
		kind := "-"
		if entry.IsDir {
			kind = "d"
		}
		fmt.Fprintf(w, "%s %10d %s\n", kind, entry.Size, entry.Name)
	}
	return nil
}

// Probe reports whether the card is usable.
func (s *Shell) Probe() string {
	return demo.Report(s.Card)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s, err := New(env.NewConfig())
	if err != nil {
		log.Fatalln(err)
	}
	s.Run(flag.Args()...)
}
