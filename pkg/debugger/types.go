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
	"io"
	"os"

	"github.com/lassandro/aliendie/pkg/assembler"
	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/machine"
)

type WatchpointType uint

const (
	ReadWatch WatchpointType = iota + 1
	WriteWatch
	ReadWriteWatch
)

func (wtype WatchpointType) String() string {
	switch wtype {
	case ReadWatch:
		return "read"
	case WriteWatch:
		return "write"
	case ReadWriteWatch:
		return "rwrite"
	}

	return "<invalid>"
}

type Watchpoint struct {
	Reg  machine.Register
	Type WatchpointType
}

// Breakpoint stops after the refresh vector has run the given stage.
type Breakpoint struct {
	Stage uint8
}

type Debugger struct {
	Break bool

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	// Stage reports the refresh stage the last vector executed.
	Stage func() uint8
	// Image reports what the board currently shows.
	Image func() board.Image

	// Animation source and its symbol table, for printing frames
	Source   *os.File
	SymTable *assembler.SymTable

	// Defaults to os.Stdout
	Output io.Writer

	HandleBreak func(*Debugger, *machine.Machine)
	HandleRead  func(machine.Register, *Debugger, *machine.Machine)
	HandleWrite func(machine.Register, *Debugger, *machine.Machine)
}
