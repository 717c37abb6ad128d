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

package debugger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/debugger"
	"github.com/lassandro/aliendie/pkg/display"
	"github.com/lassandro/aliendie/pkg/machine"
)

type stops struct {
	breaks []uint8
	reads  []machine.Register
	writes []machine.Register
}

func newRig(dbg *debugger.Debugger) (*machine.Machine, *display.Refresher, *stops) {
	mc := &machine.Machine{
		Devices: &machine.DeviceHandler{Pins: &board.Simulated{}},
	}
	fb := &display.FrameBuffer{}
	refresh := &display.Refresher{Machine: mc, Frame: fb}
	record := &stops{}

	dbg.Stage = func() uint8 { return refresh.Stage }
	dbg.HandleBreak = func(dbg *debugger.Debugger, mc *machine.Machine) {
		record.breaks = append(record.breaks, refresh.Stage)
	}
	dbg.HandleRead = func(reg machine.Register, dbg *debugger.Debugger, mc *machine.Machine) {
		record.reads = append(record.reads, reg)
	}
	dbg.HandleWrite = func(reg machine.Register, dbg *debugger.Debugger, mc *machine.Machine) {
		record.writes = append(record.writes, reg)
	}

	mc.Cli()
	mc.Vectors.Timer = refresh.Interrupt
	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_RUN)
	mc.Write(machine.REG_TIMSK, machine.TIMSK_OCIE1A)
	mc.Sei()

	mc.Debugger = dbg

	return mc, refresh, record
}

func TestBreakpoints(t *testing.T) {
	dbg := &debugger.Debugger{
		Breakpoints: []debugger.Breakpoint{{Stage: 4}, {Stage: 13}},
	}
	mc, _, record := newRig(dbg)

	for i := 0; i < 2*display.STAGE_COUNT; i++ {
		mc.Tick()
	}

	want := []uint8{4, 13, 4, 13}

	if len(record.breaks) != len(want) {
		t.Fatalf("Break count mismatch\nwant:%v\nhave:%v", want, record.breaks)
	}

	for i := range want {
		if record.breaks[i] != want[i] {
			t.Errorf("Break mismatch\nwant:%v\nhave:%v", want, record.breaks)
			break
		}
	}
}

func TestSingleStep(t *testing.T) {
	dbg := &debugger.Debugger{Break: true}
	mc, _, record := newRig(dbg)

	mc.Tick()
	mc.Tick()
	dbg.Break = false
	mc.Tick()

	if len(record.breaks) != 2 {
		t.Errorf("Step count mismatch\nwant:2\nhave:%d", len(record.breaks))
	}
}

func TestWatchpoints(t *testing.T) {
	dbg := &debugger.Debugger{
		Watchpoints: []debugger.Watchpoint{
			{Reg: machine.REG_PINB, Type: debugger.ReadWatch},
			{Reg: machine.REG_PORTB, Type: debugger.WriteWatch},
			{Reg: machine.REG_PORTD, Type: debugger.ReadWriteWatch},
		},
	}
	mc, _, record := newRig(dbg)

	// Stage 1 senses row 0 then selects it and drives a red column on
	// PORTD.
	mc.Tick()

	if want := []machine.Register{machine.REG_PINB}; !equal(record.reads, want) {
		t.Errorf("Read stops mismatch\nwant:%v\nhave:%v", want, record.reads)
	}

	want := []machine.Register{
		machine.REG_PORTB, machine.REG_PORTB, machine.REG_PORTD,
	}

	if !equal(record.writes, want) {
		t.Errorf("Write stops mismatch\nwant:%v\nhave:%v", want, record.writes)
	}
}

func equal(a, b []machine.Register) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestPrintImage(t *testing.T) {
	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	var img board.Image
	img[0][0] = board.PIXEL_RED
	img[2][2] = board.PIXEL_YELLOW

	dbg.PrintImage(img)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")

	if len(lines) != board.ROWS {
		t.Fatalf("Line count mismatch\nwant:3\nhave:%d", len(lines))
	}

	if !strings.HasPrefix(lines[0], debugger.PixelANSI(board.PIXEL_RED)) {
		t.Errorf("Red pixel missing\nhave:%q", lines[0])
	}

	if !strings.HasSuffix(lines[2], debugger.PixelANSI(board.PIXEL_YELLOW)) {
		t.Errorf("Yellow pixel missing\nhave:%q", lines[2])
	}
}

func TestPrintSourceWithoutFiles(t *testing.T) {
	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	dbg.PrintSource(0, 4)

	if have := out.String(); have != "No source file loaded\n" {
		t.Errorf("Output mismatch\nwant:No source file loaded\nhave:%s", have)
	}
}
