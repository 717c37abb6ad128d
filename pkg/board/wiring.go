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

// Package board describes how the 3x3 bi-color matrix and the nine buttons
// are wired to the microcontroller ports, and provides a simulated board
// for running the firmware without hardware.
package board

import (
	"fmt"
	"strings"

	"github.com/lassandro/aliendie/pkg/machine"
)

type Color uint8

const (
	COLOR_RED Color = iota
	COLOR_GREEN

	COLOR_COUNT
)

func (c Color) String() string {
	switch c {
	case COLOR_RED:
		return "red"
	case COLOR_GREEN:
		return "green"
	}

	return "<invalid>"
}

const (
	ROWS    = 3
	COLUMNS = 3
)

// Port directions and idle levels after reset
const (
	DDRA_INIT  uint8 = 0x03
	DDRB_INIT  uint8 = 0x46
	DDRD_INIT  uint8 = 0x0F
	PORTA_IDLE uint8 = 0x03
	PORTD_IDLE uint8 = 0x0F
)

const (
	// PORTB lines that select a matrix row (outputs)
	ROW_LINES uint8 = 0x46
	// PORTB lines that read the button columns (inputs)
	BUTTON_LINES uint8 = 0x38
	// Shift that brings the button lines down to bits 0..2
	BUTTON_SHIFT = 3
)

// PORTB value that lights a row: its select line high, the rest low.
var ROW_SELECT = [ROWS]uint8{0x04, 0x02, 0x40}

// PORTB value that senses a row: its select line low, every other line
// high, which also turns the pull-ups on for the button lines.
var ROW_SENSE = [ROWS]uint8{0xFB, 0xFD, 0xBF}

type Line struct {
	Port machine.Register
	Bit  uint8
}

var portNames = map[machine.Register]byte{
	machine.REG_PORTA: 'A',
	machine.REG_PORTB: 'B',
	machine.REG_PORTD: 'D',
}

// String names the line the way the datasheet does: PB3, PD0.
func (l Line) String() string {
	return fmt.Sprintf("P%c%d", portNames[l.Port], l.Bit)
}

func ParseLine(name string) (Line, error) {
	name = strings.ToUpper(strings.TrimSpace(name))

	if len(name) == 3 && name[0] == 'P' && '0' <= name[2] && name[2] <= '7' {
		for port, letter := range portNames {
			if name[1] == letter {
				return Line{port, name[2] - '0'}, nil
			}
		}
	}

	return Line{}, fmt.Errorf("Invalid port line '%s'", name)
}

// Lines the firmware drives: row selects then the six column cathodes.
var OUTPUT_LINES = []Line{
	{machine.REG_PORTB, 2}, {machine.REG_PORTB, 1}, {machine.REG_PORTB, 6},
	{machine.REG_PORTD, 1}, {machine.REG_PORTA, 0}, {machine.REG_PORTD, 3},
	{machine.REG_PORTD, 0}, {machine.REG_PORTA, 1}, {machine.REG_PORTD, 2},
}

// Lines the firmware reads: the three button columns, pulled up.
var INPUT_LINES = []Line{
	{machine.REG_PORTB, 3}, {machine.REG_PORTB, 4}, {machine.REG_PORTB, 5},
}

// Column is the cathode line of one LED column of one color, and the line
// group that must be released before it is driven.
type Column struct {
	Line         Line
	Release      machine.Register
	ReleaseValue uint8
	HasRelease   bool
}

// Red and green LEDs of the same column sit on different lines. Column 0
// holds the row's bit 2, column 2 its bit 0.
var COLUMN_LINES = [COLOR_COUNT][COLUMNS]Column{
	COLOR_RED: {
		{Line: Line{machine.REG_PORTD, 1}},
		{Line: Line{machine.REG_PORTA, 0}, Release: machine.REG_PORTD,
			ReleaseValue: PORTD_IDLE, HasRelease: true},
		{Line: Line{machine.REG_PORTD, 3}, Release: machine.REG_PORTA,
			ReleaseValue: PORTA_IDLE, HasRelease: true},
	},
	COLOR_GREEN: {
		{Line: Line{machine.REG_PORTD, 0}},
		{Line: Line{machine.REG_PORTA, 1}, Release: machine.REG_PORTD,
			ReleaseValue: PORTD_IDLE, HasRelease: true},
		{Line: Line{machine.REG_PORTD, 2}, Release: machine.REG_PORTA,
			ReleaseValue: PORTA_IDLE, HasRelease: true},
	},
}

// Bit of a row bitmap (LEDs or buttons) that holds the given column.
func ColumnBit(column int) uint8 {
	return 1 << (COLUMNS - 1 - column)
}

// Direction register of a port register.
func Direction(port machine.Register) machine.Register {
	switch port {
	case machine.REG_PORTA:
		return machine.REG_DDRA
	case machine.REG_PORTB:
		return machine.REG_DDRB
	case machine.REG_PORTD:
		return machine.REG_DDRD
	}

	panic("Register is not a port")
}

// Lit reports which LEDs the current port levels forward-bias: row line
// driven high and column line driven low.
func Lit(state *machine.MachineState) (img Image) {
	regs := &state.Registers

	for row := 0; row < ROWS; row++ {
		sel := ROW_SELECT[row]

		if regs[machine.REG_DDRB]&sel == 0 || regs[machine.REG_PORTB]&sel == 0 {
			continue
		}

		for color := COLOR_RED; color < COLOR_COUNT; color++ {
			for column := 0; column < COLUMNS; column++ {
				line := COLUMN_LINES[color][column].Line
				mask := uint8(1) << line.Bit

				if regs[Direction(line.Port)]&mask != 0 &&
					regs[line.Port]&mask == 0 {
					img[row][column] |= PixelOf(color)
				}
			}
		}
	}

	return img
}

// Sense computes the PINB level: output lines read back what they drive,
// button lines read high through the pull-up unless a pressed button ties
// them to a row line driven low.
func Sense(state *machine.MachineState, pressed uint16) uint8 {
	regs := &state.Registers
	ddrb := regs[machine.REG_DDRB]
	portb := regs[machine.REG_PORTB]

	pinb := (portb & ddrb) | ^(ROW_LINES | BUTTON_LINES)

	for column := 0; column < COLUMNS; column++ {
		line := ColumnBit(column) << BUTTON_SHIFT
		level := true

		for row := 0; row < ROWS; row++ {
			if pressed&ButtonMask(row, column) == 0 {
				continue
			}

			sel := ROW_SELECT[row]
			if ddrb&sel != 0 && portb&sel == 0 {
				level = false
			}
		}

		if level {
			pinb |= line
		}
	}

	return pinb
}

// Bit of a button in the nine-bit pressed mask.
func ButtonMask(row, column int) uint16 {
	return 1 << (row*COLUMNS + column)
}
