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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	if dbg.Stage == nil {
		return
	}

	stage := dbg.Stage()

	for _, breakpoint := range dbg.Breakpoints {
		if stage == breakpoint.Stage {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(reg machine.Register, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if reg == watchpoint.Reg {
			dbg.HandleRead(reg, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(reg machine.Register, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if reg == watchpoint.Reg {
			dbg.HandleWrite(reg, dbg, mc)
			break
		}
	}
}

// PrintSource prints count lines of animation source starting at the
// given frame.
func (dbg *Debugger) PrintSource(index uint8, count int) {
	out := dbg.out()

	if dbg.Source == nil {
		fmt.Fprintln(out, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(out, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[index]

	if !exists {
		fmt.Fprintf(out, "No frame %d in source\n", index)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		foundframe := false
		for frame, linebyte := range dbg.SymTable.Symbols {
			if linebyte == offset {
				fmt.Fprintf(out, "\033[1m[%02d]\033[0m ", frame)
				foundframe = true
				break
			}
		}

		if !foundframe {
			fmt.Fprint(out, "\033[1;30m~~~~\033[0m ")
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

// PrintRegisters prints the port and control registers, dimming the
// ones at zero.
func (dbg *Debugger) PrintRegisters(state *machine.MachineState) {
	out := dbg.out()

	for reg := machine.Register(0); reg < machine.REG_COUNT; reg++ {
		value := state.Registers[reg]

		if value == 0 {
			fmt.Fprintf(out, "\033[1m%-6s\033[0m \033[1;30m%#02x\033[0m\t", reg, value)
		} else {
			fmt.Fprintf(out, "\033[1m%-6s\033[0m %#02x\t", reg, value)
		}

		if reg%4 == 3 {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "\033[1mTICKS:\033[0m %d\t\033[1mI:\033[0m %v\n",
		state.Ticks, state.Interrupts)
}

// PrintImage prints the board with ANSI colors, one LED per cell.
func (dbg *Debugger) PrintImage(img board.Image) {
	out := dbg.out()

	for row := 0; row < board.ROWS; row++ {
		for column := 0; column < board.COLUMNS; column++ {
			fmt.Fprint(out, PixelANSI(img[row][column]))
		}

		fmt.Fprintln(out)
	}
}

// PixelANSI renders one LED as a colored cell.
func PixelANSI(pixel board.Pixel) string {
	switch pixel {
	case board.PIXEL_RED:
		return "\033[1;31m●\033[0m "
	case board.PIXEL_GREEN:
		return "\033[1;32m●\033[0m "
	case board.PIXEL_YELLOW:
		return "\033[1;33m●\033[0m "
	}

	return "\033[1;30m○\033[0m "
}
