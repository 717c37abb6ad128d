// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/lassandro/aliendie/pkg/assembler"
	"github.com/lassandro/aliendie/pkg/debugger"
	"github.com/lassandro/aliendie/pkg/frame"
	"github.com/lassandro/aliendie/pkg/games"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/host/cdev"
	"github.com/lassandro/aliendie/pkg/host/periph"
	"github.com/lassandro/aliendie/pkg/host/term"
	"github.com/lassandro/aliendie/pkg/host/window"
	"github.com/lassandro/aliendie/pkg/machine"
	"github.com/lassandro/aliendie/pkg/system"
)

var helpvar bool
var debugvar bool
var hostvar string
var messagevar string
var chipvar string
var linesvar string
var tickvar time.Duration

const usage = "aliendie [-host term|window|periph|cdev] [-message file] [-debug]"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.StringVar(
		&hostvar, "host", "term",
		"Where the board lives: term, window, periph or cdev",
	)
	flag.StringVar(
		&messagevar, "message", "",
		"Animation file holding the stored message. Loaded at start, "+
			"saved on power-down and exit",
	)
	flag.StringVar(
		&chipvar, "chip", cdev.DEFAULT_CHIP,
		"GPIO character device used by the cdev host",
	)
	flag.StringVar(
		&linesvar, "lines", host.DEFAULT_LINE_MAP,
		"Port line to GPIO pin mapping used by the periph and cdev hosts",
	)
	flag.DurationVar(
		&tickvar, "tick", machine.TICK_PERIOD,
		"Period of the refresh timer",
	)
	flag.Parse()
}

func openHost() (host.Host, error) {
	switch hostvar {
	case "term":
		return term.New(os.Stdin, os.Stdout), nil

	case "window":
		return window.New(), nil

	case "periph", "cdev":
		lines, err := host.ParseLineMap(linesvar)

		if err != nil {
			return nil, err
		}

		logError := func(err error) { log.Println(err) }

		if hostvar == "periph" {
			b, err := periph.Open(lines)

			if err != nil {
				return nil, err
			}

			b.OnError = logError
			return b, nil
		}

		b, err := cdev.Open(chipvar, lines)

		if err != nil {
			return nil, err
		}

		b.OnError = logError
		return b, nil
	}

	return nil, fmt.Errorf("Unknown host '%s'", hostvar)
}

func loadMessage(path string) (*frame.Animation, error) {
	message := &frame.Animation{}

	if path == "" {
		return message, nil
	}

	data, err := os.ReadFile(path)

	if errors.Is(err, fs.ErrNotExist) {
		return message, nil
	} else if err != nil {
		return nil, err
	}

	if err := message.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return message, nil
}

func saveMessage(path string, message *frame.Animation) error {
	data, err := message.MarshalBinary()

	if err != nil {
		return err
	}

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0666); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func loadSymbols(dbg *debugger.Debugger, path string) {
	filename := strings.TrimSuffix(path, filepath.Ext(path)) + assembler.SYMTABLE_EXT

	file, err := os.Open(filename)

	if err != nil {
		return
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return
	}

	dbg.SymTable = &symtable

	if symtable.Source == "" {
		return
	}

	if source, err := os.Open(symtable.Source); err == nil {
		dbg.Source = source
	} else {
		log.Println("Error loading source file")
		log.Println(err)
	}
}

func aliendie() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	if len(flag.Args()) != 0 || tickvar <= 0 {
		log.Println(usage)
		return 1
	}

	message, err := loadMessage(messagevar)

	if err != nil {
		log.Println(err)
		return 1
	}

	h, err := openHost()

	if err != nil {
		log.Println(err)
		return 1
	}

	defer h.Close()

	var dh machine.DeviceHandler
	dh.Pins = h.Pins()

	var mc machine.Machine
	mc.Devices = &dh

	s := system.New(&mc, message)
	s.Logger = log.Default()

	if messagevar != "" {
		s.Persist = func(message *frame.Animation) error {
			return saveMessage(messagevar, message)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if debugvar {
		dbg := newDebugger(s, cancel)

		if messagevar != "" {
			loadSymbols(dbg, messagevar)
		}

		if dbg.Source != nil {
			defer dbg.Source.Close()
		}

		mc.Debugger = dbg

		c := make(chan os.Signal, 1)
		defer close(c)

		signal.Notify(c, os.Interrupt)
		defer signal.Stop(c)

		go func() {
			for range c {
				fmt.Println()
				mc.Inspect(func(*machine.MachineState) {
					dbg.Break = true
				})
			}
		}()
	} else {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}

	clock := mc.Start(ctx, tickvar)
	booted := make(chan struct{})

	go func() {
		defer close(booted)
		s.Boot(games.Run)
	}()

	status := 0

	// The debugger owns stdin, the simulated board is only reachable
	// through it.
	if debugvar && hostvar == "term" {
		<-ctx.Done()
	} else if err := h.Run(ctx, &mc); err != nil {
		log.Println(err)
		status = 1
	}

	cancel()
	<-clock
	<-booted

	if messagevar != "" {
		if err := saveMessage(messagevar, s.Message); err != nil {
			log.Println("Error saving message")
			log.Println(err)
			status = 1
		}
	}

	return status
}

func main() {
	os.Exit(aliendie())
}
