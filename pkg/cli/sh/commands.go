package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sdlog/pkg/env"
	"github.com/robotalks/sdlog/pkg/sdmmc/image"
)

var (
	// AppendCmd appends a line to a file.
	AppendCmd = ishell.Cmd{
		Name:    "append",
		Aliases: []string{"a"},
		Help:    "NAME DATA...",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("NAME and DATA required"))
				return
			}
			if err := ShellFrom(c).Append(c.Args[0], strings.Join(c.Args[1:], " ")); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// LogCmd appends a timestamped line to today's file.
	LogCmd = ishell.Cmd{
		Name:    "log",
		Aliases: []string{"l"},
		Help:    "[DATA...]",
		Func: func(c *ishell.Context) {
			name, err := ShellFrom(c).Log(strings.Join(c.Args, " "))
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(name)
		},
	}

	// CatCmd prints a file.
	CatCmd = ishell.Cmd{
		Name: "cat",
		Help: "NAME",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("NAME required"))
				return
			}
			var out strings.Builder
			if err := ShellFrom(c).Cat(&out, c.Args[0]); err != nil {
				c.Err(err)
				return
			}
			c.Print(out.String())
		},
	}

	// ListCmd lists the root directory.
	ListCmd = ishell.Cmd{
		Name:    "ls",
		Aliases: []string{"dir"},
		Func: func(c *ishell.Context) {
			var out strings.Builder
			if err := ShellFrom(c).List(&out); err != nil {
				c.Err(err)
				return
			}
			c.Print(out.String())
		},
	}

	// ProbeCmd checks the card.
	ProbeCmd = ishell.Cmd{
		Name: "probe",
		Func: func(c *ishell.Context) {
			c.Println(ShellFrom(c).Probe())
		},
	}

	// FormatCmd creates a new card image.
	FormatCmd = ishell.Cmd{
		Name: "format",
		Help: "[superfloppy|mbr] SIZE_MB",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Config.Card != env.CardImage {
				c.Err(fmt.Errorf("format requires an image card"))
				return
			}
			layout, sizeMB, err := parseFormatArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err = image.Format(s.Config.Image, sizeMB<<20, layout, ""); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s: %d MB %s\n", s.Config.Image, sizeMB, layout)
		},
	}
)

func parseFormatArgs(args []string) (layout image.Layout, sizeMB int64, err error) {
	switch len(args) {
	case 1:
	case 2:
		if layout, err = image.ParseLayout(args[0]); err != nil {
			return
		}
		args = args[1:]
	default:
		err = fmt.Errorf("SIZE_MB required")
		return
	}
	if sizeMB, err = strconv.ParseInt(args[0], 10, 64); err != nil || sizeMB <= 0 {
		err = fmt.Errorf("Invalid SIZE_MB: %q", args[0])
	}
	return
}
