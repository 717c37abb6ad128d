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

// Package buttons turns the raw row samples taken by the refresh vector
// into presses.
package buttons

import (
	"github.com/lassandro/aliendie/pkg/board"
)

// Ticks without a press before the device powers down: about 15 seconds.
const IDLE_TIMEOUT uint16 = 15000

// Frames to wait after a press before returning it.
const SETTLE_FRAMES uint8 = 2

type Samples interface {
	Sample(row int) uint8
}

type Power interface {
	Idle()
	PowerDown()
}

type Delayer interface {
	Delay(frames uint8)
}

type Reseeder interface {
	Reseed(entropy uint16)
}

// Debouncer detects newly pressed buttons. It compares each sample with
// the one before it and reports presses only; holding a button is
// reported once. Calling it at most once per frame, with a settle delay
// after a press, is what keeps contact bounce out.
type Debouncer struct {
	Samples Samples
	Power   Power
	Timer   Delayer
	Random  Reseeder

	// Raw sample seen at the previous call, per row. Zero at boot, so a
	// button held through boot is not reported.
	Previous [board.ROWS]uint8

	// Newly pressed buttons per row, refreshed by PollAllRows and
	// WaitForPress. A set bit is a press.
	Edges [board.ROWS]uint8
}

// SampleRowEdge returns the buttons of row that read pressed (0) now and
// released (1) at the previous call.
func (d *Debouncer) SampleRowEdge(row int) uint8 {
	current := d.Samples.Sample(row) & 7
	edges := ^current & d.Previous[row]
	d.Previous[row] = current

	return edges
}

// PollAllRows refreshes Edges and returns the union of its rows, zero when
// nothing was newly pressed.
func (d *Debouncer) PollAllRows() uint8 {
	var pressed uint8

	for row := range d.Edges {
		d.Edges[row] = d.SampleRowEdge(row)
		pressed |= d.Edges[row]
	}

	return pressed
}

// WaitForPress sleeps a tick at a time until a button is pressed. The
// ticks left before the idle timeout are added to the random seed. When
// the timeout runs out the device powers down and WaitForPress never
// returns.
func (d *Debouncer) WaitForPress() {
	counter := IDLE_TIMEOUT

	for {
		d.Power.Idle()

		counter--
		if counter == 0 {
			d.Power.PowerDown()
		}

		if d.PollAllRows() != 0 {
			break
		}
	}

	d.Random.Reseed(counter)
	d.Timer.Delay(SETTLE_FRAMES)
}

// Pressed reports whether the button at row, column is in Edges.
func (d *Debouncer) Pressed(row, column int) bool {
	return d.Edges[row]&board.ColumnBit(column) != 0
}

// Chord returns Edges as a nine-bit mask in board.ButtonMask order.
func (d *Debouncer) Chord() uint16 {
	var mask uint16

	for row := 0; row < board.ROWS; row++ {
		for column := 0; column < board.COLUMNS; column++ {
			if d.Pressed(row, column) {
				mask |= board.ButtonMask(row, column)
			}
		}
	}

	return mask
}
