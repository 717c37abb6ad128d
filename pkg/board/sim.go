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

package board

import (
	"sync"
	"sync/atomic"

	"github.com/lassandro/aliendie/pkg/machine"
)

// Ticks an LED stays visible after it was last lit: one full refresh.
const PERSISTENCE = 18

// Simulated is an in-memory board. Hosts press and release its buttons
// and read back the glow of its LEDs as a person would perceive it.
type Simulated struct {
	// OnChange runs after every button change, normally wired to
	// Machine.PinChange.
	OnChange func()

	pressed atomic.Uint32

	lock     sync.Mutex
	tick     uint64
	current  Image
	lastLit  [ROWS][COLUMNS][COLOR_COUNT]uint64
	drives   uint64
	observed bool
}

func (b *Simulated) Drive(state *machine.MachineState) {
	b.lock.Lock()
	defer b.lock.Unlock()

	// Only the level left at the end of a tick is visible; levels set and
	// overwritten within the same vector are glitches.
	if state.Ticks != b.tick {
		b.commit()
		b.tick = state.Ticks
	}

	b.current = Lit(state)
	b.observed = true
	b.drives++
}

func (b *Simulated) commit() {
	if !b.observed {
		return
	}

	for row := 0; row < ROWS; row++ {
		for column := 0; column < COLUMNS; column++ {
			for color := COLOR_RED; color < COLOR_COUNT; color++ {
				if b.current[row][column]&PixelOf(color) != 0 {
					b.lastLit[row][column][color] = b.tick + 1
				}
			}
		}
	}
}

func (b *Simulated) Sense(state *machine.MachineState) uint8 {
	return Sense(state, b.Pressed())
}

// Glow returns every LED lit during the last PERSISTENCE ticks before now.
func (b *Simulated) Glow(now uint64) (img Image) {
	b.lock.Lock()
	defer b.lock.Unlock()

	img = b.current

	for row := 0; row < ROWS; row++ {
		for column := 0; column < COLUMNS; column++ {
			for color := COLOR_RED; color < COLOR_COUNT; color++ {
				last := b.lastLit[row][column][color]

				if last != 0 && last+PERSISTENCE > now {
					img[row][column] |= PixelOf(color)
				}
			}
		}
	}

	return img
}

// Drives counts port writes seen since the board was created.
func (b *Simulated) Drives() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.drives
}

func (b *Simulated) Pressed() uint16 {
	return uint16(b.pressed.Load())
}

func (b *Simulated) SetPressed(mask uint16) {
	old := b.pressed.Swap(uint32(mask & 0x1FF))

	if old != uint32(mask&0x1FF) && b.OnChange != nil {
		b.OnChange()
	}
}

func (b *Simulated) Press(row, column int) {
	b.SetPressed(b.Pressed() | ButtonMask(row, column))
}

func (b *Simulated) Release(row, column int) {
	b.SetPressed(b.Pressed() &^ ButtonMask(row, column))
}
