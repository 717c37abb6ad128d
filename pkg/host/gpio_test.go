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

package host_test

import (
	"errors"
	"testing"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/machine"
)

type fakeLines struct {
	levels map[board.Line]bool
	sets   int
	broken *board.Line
}

func (f *fakeLines) Set(line board.Line, high bool) error {
	if f.broken != nil && line == *f.broken {
		return errors.New("line busy")
	}

	f.sets++
	f.levels[line] = high

	return nil
}

func (f *fakeLines) Get(line board.Line) (bool, error) {
	high, exists := f.levels[line]

	if !exists {
		return true, nil
	}

	return high, nil
}

func TestDefaultLineMap(t *testing.T) {
	lines, err := host.ParseLineMap(host.DEFAULT_LINE_MAP)

	if err != nil {
		t.Fatal(err)
	}

	if len(lines) != len(board.OUTPUT_LINES)+len(board.INPUT_LINES) {
		t.Errorf("Line count mismatch\nwant:12\nhave:%d", len(lines))
	}

	again, err := host.ParseLineMap(lines.String())

	if err != nil || again.String() != lines.String() {
		t.Errorf("Line map round trip mismatch\nwant:%s\nhave:%s %v",
			lines, again, err)
	}

	if _, err := host.ParseLineMap("PB2=GPIO17"); err == nil {
		t.Errorf("Partial line map accepted")
	}

	if _, err := host.ParseLineMap("PB2"); err == nil {
		t.Errorf("Malformed line map accepted")
	}
}

func TestGPIOPinsDrive(t *testing.T) {
	lines := &fakeLines{levels: make(map[board.Line]bool)}
	pins := &host.GPIOPins{Lines: lines}

	var state machine.MachineState
	state.Registers[machine.REG_DDRA] = board.DDRA_INIT
	state.Registers[machine.REG_DDRB] = board.DDRB_INIT
	state.Registers[machine.REG_DDRD] = board.DDRD_INIT
	state.Registers[machine.REG_PORTA] = board.PORTA_IDLE
	state.Registers[machine.REG_PORTD] = 0x0D
	state.Registers[machine.REG_PORTB] = board.ROW_SELECT[0]

	pins.Drive(&state)

	if lines.sets != len(board.OUTPUT_LINES) {
		t.Errorf("First drive mismatch\nwant:%d sets\nhave:%d",
			len(board.OUTPUT_LINES), lines.sets)
	}

	// PD1 low, row 0 high: red LED at row 0 column 0
	if lines.levels[board.Line{Port: machine.REG_PORTD, Bit: 1}] ||
		!lines.levels[board.Line{Port: machine.REG_PORTB, Bit: 2}] {
		t.Errorf("Line levels mismatch: %v", lines.levels)
	}

	pins.Drive(&state)

	if lines.sets != len(board.OUTPUT_LINES) {
		t.Errorf("Unchanged drive touched lines: %d sets", lines.sets)
	}

	state.Registers[machine.REG_PORTD] = 0x0F
	pins.Drive(&state)

	if lines.sets != len(board.OUTPUT_LINES)+1 {
		t.Errorf("Changed drive mismatch\nwant:%d sets\nhave:%d",
			len(board.OUTPUT_LINES)+1, lines.sets)
	}
}

func TestGPIOPinsSense(t *testing.T) {
	lines := &fakeLines{levels: make(map[board.Line]bool)}
	pins := &host.GPIOPins{Lines: lines}

	var state machine.MachineState
	state.Registers[machine.REG_DDRB] = board.DDRB_INIT
	state.Registers[machine.REG_PORTB] = board.ROW_SENSE[0]

	lines.levels[board.INPUT_LINES[1]] = false

	if have := pins.Sense(&state) >> board.BUTTON_SHIFT & 7; have != 0x5 {
		t.Errorf("Sense mismatch\nwant:101\nhave:%03b", have)
	}
}

func TestGPIOPinsErrors(t *testing.T) {
	broken := board.Line{Port: machine.REG_PORTA, Bit: 1}
	lines := &fakeLines{levels: make(map[board.Line]bool), broken: &broken}

	var errs []error
	pins := &host.GPIOPins{
		Lines:   lines,
		OnError: func(err error) { errs = append(errs, err) },
	}

	var state machine.MachineState
	state.Registers[machine.REG_DDRA] = board.DDRA_INIT
	pins.Drive(&state)

	if len(errs) != 1 {
		t.Fatalf("Error count mismatch\nwant:1\nhave:%d", len(errs))
	}

	if have := errs[0].Error(); have != "PA1: line busy" {
		t.Errorf("Error mismatch\nwant:PA1: line busy\nhave:%s", have)
	}
}
