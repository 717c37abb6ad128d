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

package display

import (
	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/machine"
)

// Stages in one refresh frame: one per LED.
const STAGE_COUNT = 18

// Action is what one stage of the refresh does. A latch action selects
// the row and takes a copy of its bitmap before driving column 0; the
// columns after it reuse that copy. Red latches also read the buttons,
// which share the row lines.
type Action struct {
	Color  board.Color
	Row    int
	Column int
	Latch  bool
}

func (a Action) Samples() bool {
	return a.Latch && a.Color == board.COLOR_RED
}

// Schedule maps each stage in [1, STAGE_COUNT] to its action. Red rows come
// first, then green.
var Schedule = func() (table [STAGE_COUNT + 1]Action) {
	stage := 1

	for color := board.COLOR_RED; color < board.COLOR_COUNT; color++ {
		for row := 0; row < board.ROWS; row++ {
			for column := 0; column < board.COLUMNS; column++ {
				table[stage] = Action{
					Color:  color,
					Row:    row,
					Column: column,
					Latch:  column == 0,
				}
				stage++
			}
		}
	}

	return table
}()

// Refresher is the timer vector. It owns Stage and the latched row; it
// touches the frame buffer only through single-cell reads and writes.
type Refresher struct {
	Machine *machine.Machine
	Frame   *FrameBuffer

	Stage uint8
	row   uint8
}

// Next is the stage that follows stage.
func Next(stage uint8) (next uint8, wrapped bool) {
	if stage >= STAGE_COUNT {
		return 1, true
	}

	return stage + 1, false
}

// Interrupt advances one stage and performs its action. Crossing from the
// last stage back to the first completes a frame.
func (r *Refresher) Interrupt() {
	var wrapped bool
	r.Stage, wrapped = Next(r.Stage)

	if wrapped {
		r.Frame.decrementCountdown()
	}

	r.execute(Schedule[r.Stage])
}

func (r *Refresher) execute(action Action) {
	mc := r.Machine

	if action.Latch {
		if action.Samples() {
			mc.Write(machine.REG_PORTB, board.ROW_SENSE[action.Row])
			r.Frame.setSample(
				action.Row, mc.Read(machine.REG_PINB)>>board.BUTTON_SHIFT,
			)
		}

		mc.Write(machine.REG_PORTB, board.ROW_SELECT[action.Row])
		r.row = r.Frame.Plane(action.Color).Row(action.Row)
	}

	column := board.COLUMN_LINES[action.Color][action.Column]

	if column.HasRelease {
		mc.Write(column.Release, column.ReleaseValue)
	}

	mc.Write(column.Line.Port, r.columnLevel(action.Column, column.Line.Bit))
}

// Every line of the port high except the target, which carries the
// column's bit of the latched row.
func (r *Refresher) columnLevel(column int, bit uint8) uint8 {
	level := (r.row >> (board.COLUMNS - 1 - column)) & 1

	return ^(uint8(1) << bit) | level<<bit
}
