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

// Package host connects a machine to the world: a simulated board shown
// on a terminal or in a window, or real GPIO lines.
package host

import (
	"context"

	"github.com/lassandro/aliendie/pkg/machine"
)

type Host interface {
	// Pins is attached to the machine before it boots.
	Pins() machine.Pins
	// Run serves input and output until the user quits or ctx ends.
	Run(ctx context.Context, mc *machine.Machine) error
	Close() error
}

// Buttons maps key runes to matrix buttons, laid out like the board:
//
//	q w e
//	a s d
//	z x c
var Buttons = map[rune][2]int{
	'q': {0, 0}, 'w': {0, 1}, 'e': {0, 2},
	'a': {1, 0}, 's': {1, 1}, 'd': {1, 2},
	'z': {2, 0}, 'x': {2, 1}, 'c': {2, 2},
}

// PinChanger returns a pin change callback for a simulated board. The
// wake runs on its own goroutine: callers may hold the machine.
func PinChanger(mc *machine.Machine) func() {
	return func() {
		go mc.PinChange()
	}
}
