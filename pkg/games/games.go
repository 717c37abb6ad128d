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

// Package games is the toy's program: a start animation, then whichever
// game the first press selects.
package games

import (
	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/frame"
	"github.com/lassandro/aliendie/pkg/system"
)

// Frames to pause after a game before the start animation plays again.
const MENU_PAUSE uint8 = 10

// Four frames of 9 bytes: the tails byte (red and green tail of frame 0
// in bits 0 and 1, frame 1 in bits 2 and 3, ...), then red and green of
// each frame.
type Animation4 [9]uint8

var START_ANIMATION = Animation4{
	0x7F,
	0xFF, 0xFF,
	0xFD, 0xFA,
	0xE8, 0xD5,
	0x85, 0x6A,
}

// Frames each start animation frame stays up.
const ANIMATION4_FRAMES uint8 = 5

type Game struct {
	Name string
	// Button that selects the game, tested in catalog order
	Row    int
	Column int
	Play   func(s *system.System)
}

var Catalog = []Game{
	{"flip-flop", 1, 2, FlipFlop},
	{"tic-tac-toe", 2, 0, TicTacToe},
	{"slow player", 0, 0, SlowPlayer},
	{"timer", 2, 2, Countdown},
	{"die", 1, 1, Die},
	{"editor", 0, 1, Editor},
	{"coins", 2, 1, Coins},
	{"fast player", 0, 2, FastPlayer},
}

var ScreenSaverGame = Game{Name: "screen saver", Row: -1, Column: -1, Play: ScreenSaver}

// Select picks the first catalog game whose button is among edges, or the
// screen saver.
func Select(edges [board.ROWS]uint8) Game {
	for _, game := range Catalog {
		if edges[game.Row]&board.ColumnBit(game.Column) != 0 {
			return game
		}
	}

	return ScreenSaverGame
}

// Run is the toy's main loop. It does not return.
func Run(s *system.System) {
	for {
		Animate4(s, &START_ANIMATION)
		s.WaitForPress()

		game := Select(s.Edges())
		s.Logf("Playing %s", game.Name)

		s.Clear()
		game.Play(s)
		s.Delay(MENU_PAUSE)
	}
}

func Animate4(s *system.System, data *Animation4) {
	tails := data[0]

	for i := 0; i < 4; i++ {
		s.Red().SetRows(frame.Unpack(data[1+2*i], tails))
		tails >>= 1
		s.Green().SetRows(frame.Unpack(data[2+2*i], tails))
		tails >>= 1

		s.Delay(ANIMATION4_FRAMES)
	}
}
