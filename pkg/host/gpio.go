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

package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/machine"
)

// Wiring for a Raspberry Pi header, BCM numbering.
const DEFAULT_LINE_MAP = "PB2=GPIO17,PB1=GPIO27,PB6=GPIO22," +
	"PD1=GPIO5,PA0=GPIO6,PD3=GPIO13," +
	"PD0=GPIO19,PA1=GPIO26,PD2=GPIO21," +
	"PB3=GPIO23,PB4=GPIO24,PB5=GPIO25"

// LineMap names the host GPIO behind every port line the firmware uses.
type LineMap map[board.Line]string

func ParseLineMap(s string) (LineMap, error) {
	lines := make(LineMap)

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)

		if field == "" {
			continue
		}

		parts := strings.SplitN(field, "=", 2)

		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("Invalid line mapping '%s'", field)
		}

		line, err := board.ParseLine(parts[0])

		if err != nil {
			return nil, err
		}

		lines[line] = strings.TrimSpace(parts[1])
	}

	for _, line := range append(append([]board.Line{}, board.OUTPUT_LINES...), board.INPUT_LINES...) {
		if _, exists := lines[line]; !exists {
			return nil, fmt.Errorf("No pin mapped to %s", line)
		}
	}

	return lines, nil
}

func (lines LineMap) String() string {
	fields := make([]string, 0, len(lines))

	for line, name := range lines {
		fields = append(fields, line.String()+"="+name)
	}

	sort.Strings(fields)

	return strings.Join(fields, ",")
}

func IsInput(line board.Line) bool {
	for _, input := range board.INPUT_LINES {
		if input == line {
			return true
		}
	}

	return false
}

// Lines is a set of real GPIO lines standing in for the port pins.
type Lines interface {
	Set(line board.Line, high bool) error
	Get(line board.Line) (bool, error)
}

// GPIOPins mirrors the port registers onto real lines. Outputs are only
// touched when their level changes.
type GPIOPins struct {
	Lines Lines
	// OnError sees every failed line access. May be nil.
	OnError func(err error)

	levels map[board.Line]bool
}

func (p *GPIOPins) fail(err error) {
	if p.OnError != nil {
		p.OnError(err)
	}
}

func (p *GPIOPins) Drive(state *machine.MachineState) {
	if p.levels == nil {
		p.levels = make(map[board.Line]bool)
	}

	regs := &state.Registers

	for _, line := range board.OUTPUT_LINES {
		mask := uint8(1) << line.Bit

		if regs[board.Direction(line.Port)]&mask == 0 {
			continue
		}

		high := regs[line.Port]&mask != 0

		if last, exists := p.levels[line]; exists && last == high {
			continue
		}

		if err := p.Lines.Set(line, high); err != nil {
			p.fail(fmt.Errorf("%s: %w", line, err))
			continue
		}

		p.levels[line] = high
	}
}

func (p *GPIOPins) Sense(state *machine.MachineState) uint8 {
	regs := &state.Registers
	pinb := (regs[machine.REG_PORTB] & regs[machine.REG_DDRB]) |
		^(board.ROW_LINES | board.BUTTON_LINES)

	for _, line := range board.INPUT_LINES {
		high, err := p.Lines.Get(line)

		if err != nil {
			p.fail(fmt.Errorf("%s: %w", line, err))
			high = true
		}

		if high {
			pinb |= 1 << line.Bit
		}
	}

	return pinb
}
