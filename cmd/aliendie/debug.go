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
	"bufio"
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/lassandro/aliendie/pkg/assembler"
	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/debugger"
	"github.com/lassandro/aliendie/pkg/display"
	"github.com/lassandro/aliendie/pkg/encoding"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/machine"
	"github.com/lassandro/aliendie/pkg/system"
)

var lastcmd []string
var shutdown context.CancelFunc
var dbgsystem *system.System

func newDebugger(s *system.System, cancel context.CancelFunc) *debugger.Debugger {
	shutdown = cancel
	dbgsystem = s

	if sim, ok := s.Machine.Devices.Pins.(*board.Simulated); ok {
		sim.OnChange = host.PinChanger(s.Machine)
	}

	return &debugger.Debugger{
		Break: true,
		Stage: func() uint8 {
			return s.Refresh.Stage
		},
		Image: func() board.Image {
			return board.ImageOf(s.Frame.Red.Rows(), s.Frame.Green.Rows())
		},
		HandleBreak: handleBreak,
		HandleRead:  handleRead,
		HandleWrite: handleWrite,
	}
}

func listFormat(count int, suffix string) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: %s\n", int64(digits)+1, suffix)
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [stage 1-18]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		stage, err := encoding.DecodeInt(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if stage < 1 || stage > display.STAGE_COUNT {
			log.Println(usage)
			return
		}

		exists := false

		for _, breakpoint := range dbg.Breakpoints {
			if int(breakpoint.Stage) == stage {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Breakpoints = append(
				dbg.Breakpoints,
				debugger.Breakpoint{Stage: uint8(stage)},
			)

			action := display.Schedule[stage]
			fmt.Printf(
				"Breakpoint added [stage %d: %s row %d column %d]\n",
				stage, action.Color, action.Row, action.Column,
			)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		fmtstring := listFormat(len(dbg.Breakpoints), "stage %d")

		for i, breakpoint := range dbg.Breakpoints {
			log.Printf(fmtstring, i, breakpoint.Stage)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := encoding.DecodeInt(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= len(dbg.Breakpoints) {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
		log.Println(usage)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm|clear]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [register] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		reg, ok := machine.ParseRegister(args[0])

		if !ok {
			log.Printf("Invalid register '%s'\n", args[0])
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		exists := false

		for _, watchpoint := range dbg.Watchpoints {
			if watchpoint.Reg == reg && watchpoint.Type == wtype {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Watchpoints = append(
				dbg.Watchpoints,
				debugger.Watchpoint{Reg: reg, Type: wtype},
			)

			fmt.Printf("Watchpoint added [%s] (%s)\n", reg, wtype)
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		fmtstring := listFormat(len(dbg.Watchpoints), "%s %s")

		for i, watchpoint := range dbg.Watchpoints {
			log.Printf(fmtstring, i, watchpoint.Reg, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := encoding.DecodeInt(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= len(dbg.Watchpoints) {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "register [name] [value]"

	if len(args) == 0 {
		dbg.PrintRegisters(&mc.State)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	reg, ok := machine.ParseRegister(args[0])

	if !ok {
		log.Printf("Invalid register '%s'\n", args[0])
		return
	}

	value, err := encoding.DecodeByte(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	// Through the machine, so the pins follow
	mc.Write(reg, value)
	fmt.Printf("\033[1m%s:\033[0m %#02x\n", reg, mc.State.Registers[reg])
}

func debugFrame(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "frame"

	if len(args) != 0 {
		log.Println(usage)
		return
	}

	s := dbgsystem

	fmt.Printf("\033[1mBuffer\033[0m (stage %d, countdown %d)\n",
		s.Refresh.Stage, s.Frame.Countdown())
	dbg.PrintImage(dbg.Image())

	fmt.Println("\033[1mLit\033[0m")
	dbg.PrintImage(board.Lit(&mc.State))

	for row := 0; row < board.ROWS; row++ {
		fmt.Printf("row %d: red %#02x green %#02x sample %03b\n",
			row, s.Frame.Red.Row(row), s.Frame.Green.Row(row),
			s.Frame.Sample(row)&7)
	}
}

func debugPress(mc *machine.Machine, press bool, args []string) {
	const usage = "press|release [row,column|all]"

	sim, ok := mc.Devices.Pins.(*board.Simulated)

	if !ok {
		fmt.Println("Buttons can only be pressed on a simulated board")
		return
	}

	if len(args) == 0 {
		fmt.Printf("Pressed: %09b\n", sim.Pressed())
		return
	}

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	if args[0] == "all" {
		if press {
			sim.SetPressed(0x1FF)
		} else {
			sim.SetPressed(0)
		}

		return
	}

	row, column, err := encoding.DecodeButton(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	if press {
		sim.Press(row, column)
	} else {
		sim.Release(row, column)
	}

	fmt.Printf("Pressed: %09b\n", sim.Pressed())
}

func debugSource(dbg *debugger.Debugger, args []string) {
	const usage = "source [frame] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	index := 0
	count := 4

	var err error

	if len(args) > 0 {
		if index, err = encoding.DecodeInt(args[0]); err != nil {
			log.Println(err)
			return
		}
	}

	if len(args) > 1 {
		if count, err = encoding.DecodeInt(args[1]); err != nil {
			log.Println(err)
			return
		}
	}

	if index < 0 || index > math.MaxUint8 {
		log.Println(usage)
		return
	}

	dbg.PrintSource(uint8(index), count)
}

func debugMessage(dbg *debugger.Debugger, args []string) {
	var labels map[uint8]string

	if dbg.SymTable != nil {
		labels = dbg.SymTable.Labels
	}

	err := assembler.DisassembleAnimation(os.Stdout, dbgsystem.Message, labels)

	if err != nil {
		log.Println(err)
	}
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			dbg.Break = false
			shutdown()
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, mc, args)

		case "f", "frame":
			debugFrame(dbg, mc, args)

		case "p", "press":
			debugPress(mc, true, args)

		case "u", "release":
			debugPress(mc, false, args)

		case "s", "src", "source":
			debugSource(dbg, args)

		case "m", "msg", "message":
			debugMessage(dbg, args)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			dbg.Break = false
			shutdown()
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
		debugFrame(dbg, mc, nil)
	} else {
		fmt.Printf("\033[1mTICK\033[0m %d \033[1mSTAGE\033[0m %d\n",
			mc.State.Ticks, dbgsystem.Refresh.Stage)
	}

	debugREPL(dbg, mc)
}

func handleRead(reg machine.Register, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	fmt.Printf("\033[1mread %s:\033[0m %#02x\n", reg, mc.State.Registers[reg])
	debugREPL(dbg, mc)
}

func handleWrite(reg machine.Register, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	fmt.Printf("\033[1mwrite %s:\033[0m %#02x\n", reg, mc.State.Registers[reg])
	debugREPL(dbg, mc)
}
