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

// Package display is the refresh engine of the LED matrix: the frame
// buffer shared with the timer vector, the stage table the vector walks,
// and the frame-counting delay built on top of it.
package display

import (
	"sync/atomic"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/frame"
)

// Plane is one color of the frame buffer. Foreground code writes it, the
// timer vector reads it. Each row is a separate atomic cell, so the vector
// may see a plane half way through an update, never a torn row.
type Plane struct {
	rows [3]atomic.Uint32
}

func (p *Plane) Row(i int) uint8 {
	return uint8(p.rows[i].Load())
}

func (p *Plane) SetRow(i int, value uint8) {
	p.rows[i].Store(uint32(value))
}

func (p *Plane) Rows() frame.Rows {
	return frame.Rows{p.Row(0), p.Row(1), p.Row(2)}
}

func (p *Plane) SetRows(rows frame.Rows) {
	for i, value := range rows {
		p.SetRow(i, value)
	}
}

// Fill sets every row to value.
func (p *Plane) Fill(value uint8) {
	p.SetRows(frame.Fill(value))
}

// FrameBuffer is all state shared between the timer vector and the
// foreground. Every cell has exactly one writer.
type FrameBuffer struct {
	Red   Plane
	Green Plane

	// Written by the vector in red latch slots, raw PINB >> 3.
	samples [3]atomic.Uint32

	// Set by the foreground, decremented by the vector once per frame.
	countdown atomic.Uint32
}

func (fb *FrameBuffer) Plane(color board.Color) *Plane {
	if color == board.COLOR_RED {
		return &fb.Red
	}

	return &fb.Green
}

// Sample is the last raw button reading of a row, 0 = pressed in bits
// 0..2, upper bits undefined.
func (fb *FrameBuffer) Sample(row int) uint8 {
	return uint8(fb.samples[row].Load())
}

func (fb *FrameBuffer) setSample(row int, value uint8) {
	fb.samples[row].Store(uint32(value))
}

func (fb *FrameBuffer) Countdown() uint8 {
	return uint8(fb.countdown.Load())
}

func (fb *FrameBuffer) SetCountdown(frames uint8) {
	fb.countdown.Store(uint32(frames))
}

// Saturating: a countdown left at zero stays at zero.
func (fb *FrameBuffer) decrementCountdown() {
	for {
		n := fb.countdown.Load()

		if n == 0 || fb.countdown.CompareAndSwap(n, n-1) {
			return
		}
	}
}
