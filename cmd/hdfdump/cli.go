package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/codegangsta/cli"
	shlex "github.com/flynn-archive/go-shlex"
	"github.com/peterh/liner"

	log "github.com/golang/glog"

	"github.com/nkoval/go-hdf4/hdf4"
)

var usage = `
	hdfdump opens a container read-only and inspects its contents.

	Run it against a specific file and subcommand to get one answer:

		hdfdump --file c.hdf walk
		hdfdump --file c.hdf inspect --tag 106 --ref 1
		hdfdump --file c.hdf hexdump --tag 106 --ref 1 --length 64

	Or start an interactive shell, which keeps the container open across
	commands and adds history and tab completion:

		hdfdump --file c.hdf shell
	`

// dumper holds the one container hdfdump has open and the cli.App that
// dispatches subcommands against it.
type dumper struct {
	path    string
	f       *hdf4.File
	app     *cli.App
	inShell bool
}

// newDumper builds the cli.App and its subcommand table.
func newDumper() *dumper {
	d := &dumper{}
	app := cli.NewApp()
	app.Name = "hdfdump"
	app.Usage = usage
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "file, f",
			Usage: "path to the container to open",
		},
	}

	tagFlag := cli.IntFlag{Name: "tag, t", Usage: "element tag"}
	refFlag := cli.IntFlag{Name: "ref, r", Usage: "element ref"}
	lengthFlag := cli.IntFlag{Name: "length, l", Usage: "bytes to dump (default: 64)", Value: 64}

	app.Commands = []cli.Command{
		{
			Name:   "walk",
			Usage:  "Lists every live DD entry across the chain.",
			Action: d.cmdWalk,
		},
		{
			Name:   "stat",
			Usage:  "Prints entry counts and allocator counters for the container.",
			Action: d.cmdStat,
		},
		{
			Name:  "inspect",
			Usage: "Prints metadata for one (tag, ref).",
			Flags: []cli.Flag{tagFlag, refFlag},
			Action: d.cmdInspect,
		},
		{
			Name:  "hexdump",
			Usage: "Hex dumps the first --length bytes of one (tag, ref).",
			Flags: []cli.Flag{tagFlag, refFlag, lengthFlag},
			Action: d.cmdHexdump,
		},
		{
			Name:   "shell",
			Usage:  "Starts an interactive shell against the open container.",
			Action: d.cmdShell,
		},
	}
	app.Before = d.beforeSubcommandRun
	d.app = app
	return d
}

// run starts hdfdump with the given os.Args-style argument list.
func (d *dumper) run(args []string) error {
	return d.app.Run(args)
}

// beforeSubcommandRun opens the container named by --file before any
// subcommand runs, unless one is already open (the shell keeps its
// container open across commands and reuses this hook for each line).
func (d *dumper) beforeSubcommandRun(c *cli.Context) error {
	path := c.GlobalString("file")
	if d.f != nil && d.path == path {
		return nil
	}
	if path == "" {
		return fmt.Errorf("missing --file")
	}
	if d.f != nil {
		d.f.Close()
	}
	f, err := hdf4.Open(path, hdf4.ReadOnly)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	d.f, d.path = f, path
	return nil
}

// stop closes whatever container is currently open.
func (d *dumper) stop() {
	if d.f != nil {
		d.f.Close()
		d.f = nil
	}
}

func (d *dumper) cmdWalk(c *cli.Context) {
	entries := d.f.Walk()
	log.Infof("%d live DD entries", len(entries))
	for _, e := range entries {
		log.Infof("tag=%-5d ref=%-5d offset=%-8d length=%-8d special=%v", e.Tag, e.Ref, e.Offset, e.Length, e.Special)
	}
}

func (d *dumper) cmdStat(c *cli.Context) {
	entries := d.f.Walk()
	var special int
	for _, e := range entries {
		if e.Special {
			special++
		}
	}
	log.Infof("%s: %d entries (%d special)", d.path, len(entries), special)

	stats := d.f.Stats()
	log.Infof("allocator: %d allocations, %d bytes handed out, %d bytes leaked",
		stats.Allocations, stats.BytesAlloc, stats.BytesLeaked)
	if err := d.f.Validate(); err != nil {
		log.Errorf("allocator inconsistency: %v", err)
	}
}

func (d *dumper) cmdInspect(c *cli.Context) {
	tag, ref := uint16(c.Int("tag")), uint16(c.Int("ref"))
	aid, err := d.f.StartRead(tag, ref)
	if err != nil {
		log.Errorf("start_read(%d,%d): %v", tag, ref, err)
		return
	}
	defer d.f.EndAccess(aid)

	meta, err := d.f.Inquire(aid)
	if err != nil {
		log.Errorf("inquire: %v", err)
		return
	}
	log.Infof("(%d,%d) length=%d special=%v", meta.Tag, meta.Ref, meta.Length, meta.Special)

	if !meta.Special {
		return
	}
	info, err := d.f.Info(aid)
	if err != nil {
		log.Errorf("info: %v", err)
		return
	}
	log.Infof("  code=%s model=%s coder=%s comp_ref=%d attached=%d", info.SpecialCode, info.Model, info.Coder, info.CompRef, info.Attached)
}

func (d *dumper) cmdHexdump(c *cli.Context) {
	tag, ref := uint16(c.Int("tag")), uint16(c.Int("ref"))
	n := c.Int("length")
	if n <= 0 {
		n = 64
	}

	aid, err := d.f.StartRead(tag, ref)
	if err != nil {
		log.Errorf("start_read(%d,%d): %v", tag, ref, err)
		return
	}
	defer d.f.EndAccess(aid)

	buf := make([]byte, n)
	got, err := d.f.Read(aid, n, buf)
	if err != nil {
		log.Errorf("read: %v", err)
		return
	}
	fmt.Print(hex.Dump(buf[:got]))
}

// cmdShell implements the "shell" subcommand.
func (d *dumper) cmdShell(c *cli.Context) {
	d.inShell = true
	defer func() { d.inShell = false }()

	cli.OsExiter = func(int) {}

	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	defer ln.Close()

	ln.SetCompleter(func(line string) (out []string) {
		for _, cmd := range d.app.Commands {
			if strings.HasPrefix(cmd.Name, line) {
				out = append(out, cmd.Name)
			}
		}
		return
	})

	for {
		input, err := ln.Prompt(fmt.Sprintf("(%s) ", d.path))
		if err != nil {
			return
		}

		// shlex gives shell-style quoting rules for arguments that embed
		// spaces (not needed today, but matches how this kind of tool is
		// conventionally wired).
		args, err := shlex.Split(input)
		if err != nil {
			log.Errorf("error: %v", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return
		}

		if d.runShellCommand(args) == nil {
			ln.AppendHistory(input)
		}
	}
}

// runShellCommand dispatches one shell line as a subcommand invocation
// against the container already open for this session.
func (d *dumper) runShellCommand(args []string) error {
	full := append([]string{"hdfdump", "--file", d.path}, args...)
	return d.app.Run(full)
}
