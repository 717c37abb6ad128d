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

package games

import (
	"github.com/lassandro/aliendie/pkg/display"
	"github.com/lassandro/aliendie/pkg/frame"
	"github.com/lassandro/aliendie/pkg/system"
)

// Packed die faces, red plane. Position (row 0, column 1) is always off and
// left out: unpack with value|0x40 and tail value>>6.
var DIE_FACES = [6]uint8{0xEF, 0xD7, 0xAB, 0x3A, 0x2A, 0x12}

const (
	SLOW_SHOW_FRAMES  uint8 = 50
	SLOW_BLANK_FRAMES uint8 = 10
	FAST_SHOW_FRAMES  uint8 = 30
	TIMER_STEP_FRAMES uint8 = 20
	SAVER_STEP_FRAMES uint8 = 10
	SAVER_STEPS             = 255
)

// Raw row 0 chords (0 = pressed) that drive the editor
const (
	EDITOR_NEXT   uint8 = 0x1
	EDITOR_FINISH uint8 = 0x2
	EDITOR_BACK   uint8 = 0x4
)

// Spreads every button to its row neighbours.
func expand(v uint8) uint8 {
	return v | (v << 1) | (v >> 1)
}

// FlipFlop starts from random green rows; each press toggles the pressed
// button and its neighbours. Solved when all nine are lit.
func FlipFlop(s *system.System) {
	green := s.Green()

	for row := 0; row < 3; row++ {
		green.SetRow(row, s.Next())
	}

	for {
		s.WaitForPress()

		edges := s.Edges()
		a := expand(edges[0])
		b := expand(edges[1])
		c := expand(edges[2])

		green.SetRow(0, green.Row(0)^(a|b))
		green.SetRow(1, green.Row(1)^(a|b|c))
		green.SetRow(2, green.Row(2)^(b|c))

		if (green.Row(0)|green.Row(1)|green.Row(2))&7 == 0 {
			return
		}
	}
}

// TicTacToe alternates red and green marks, red first, until a line is
// complete or the board is full.
func TicTacToe(s *system.System) {
	red, green := s.Red(), s.Green()
	current := red

	for {
		s.WaitForPress()

		edges := s.Edges()

		for row := 0; row < 3; row++ {
			b := edges[row]

			// Free cells read 1 in both planes
			if red.Row(row)&green.Row(row)&b == 0 {
				continue
			}

			current.SetRow(row, current.Row(row)&^b)

			if ((green.Row(0)&red.Row(0))|
				(green.Row(1)&red.Row(1))|
				(green.Row(2)&red.Row(2)))&7 == 0 {
				return
			}

			if wins(current, row, b) {
				return
			}

			if current == red {
				current = green
			} else {
				current = red
			}

			break
		}
	}
}

func wins(p *display.Plane, row int, b uint8) bool {
	r0, r1, r2 := p.Row(0), p.Row(1), p.Row(2)

	return p.Row(row) == 0 ||
		(r0|r1|r2)&b == 0 ||
		((r0<<1)|r1|(r2>>1))&2 == 0 ||
		((r0>>1)|r1|(r2<<1))&2 == 0
}

// SlowPlayer shows the stored message with a blank frame between frames.
func SlowPlayer(s *system.System) {
	for i := 0; i < int(s.Message.Size); i++ {
		s.Show(i)
		s.Delay(SLOW_SHOW_FRAMES)
		s.Clear()
		s.Delay(SLOW_BLANK_FRAMES)

		if s.PollAllRows() != 0 {
			return
		}
	}
}

// FastPlayer shows the stored message back to back.
func FastPlayer(s *system.System) {
	for i := 0; i < int(s.Message.Size); i++ {
		s.Show(i)
		s.Delay(FAST_SHOW_FRAMES)

		if s.PollAllRows() != 0 {
			return
		}
	}
}

// Countdown fills the red rows LED by LED; every full red pass lights one
// more green LED. A press stops it.
func Countdown(s *system.System) {
	red, green := s.Red(), s.Green()

	for g := 0; g < 3; g++ {
		for {
			red.Fill(0xFF)

			for r := 0; r < 3; r++ {
				for {
					v := red.Row(r) << 1
					red.SetRow(r, v)
					s.Delay(TIMER_STEP_FRAMES)

					if v&7 == 0 {
						break
					}

					if s.PollAllRows() != 0 {
						s.WaitForPress()
						return
					}
				}
			}

			v := green.Row(g) << 1
			green.SetRow(g, v)
			s.Delay(TIMER_STEP_FRAMES)

			if v&7 == 0 {
				break
			}
		}
	}
}

// Die rolls one of six faces.
func Die(s *system.System) {
	v := DIE_FACES[s.Next()%6]

	s.Red().SetRows(frame.Unpack(v|0x40, v>>6))
	s.WaitForPress()
}

// Coins flips nine coins: yellow or dark.
func Coins(s *system.System) {
	value := s.Next()
	tail := s.Next()
	rows := frame.Unpack(value, tail)

	s.Green().SetRows(rows)
	s.Red().SetRows(rows)
	s.WaitForPress()
}

// Editor edits the stored message frame by frame. A single press cycles
// that LED dark, red, green, yellow. Row 0 chords move between frames or
// finish.
func Editor(s *system.System) {
	red, green := s.Red(), s.Green()
	msg := s.Message
	index := 0

	for {
		s.Show(index)

	edit:
		for {
			s.WaitForPress()

			switch s.Frame.Sample(0) & 7 {
			case EDITOR_NEXT:
				index++
				msg.Size = uint8(index)

				if index == frame.MAX_FRAMES {
					return
				}

				break edit

			case EDITOR_BACK:
				if index > 0 {
					index--
				}

				break edit

			case EDITOR_FINISH:
				msg.Size = uint8(index)
				return

			default:
				// Saved before the toggle: the first button of a chord
				// must not end up in the frame.
				msg.Store(index, red.Rows(), green.Rows())

				edges := s.Edges()
				for row := 2; row >= 0; row-- {
					b := edges[row]

					red.SetRow(row, red.Row(row)^b)
					if red.Row(row)&b != 0 {
						green.SetRow(row, green.Row(row)^b)
					}
				}
			}
		}
	}
}

func scroll(s *system.System, p *display.Plane) {
	for row := 0; row < 3; row++ {
		p.SetRow(row, (p.Row(row)<<1)|(s.Next()&1))
	}
}

// ScreenSaver scrolls random bits across both planes until a press.
func ScreenSaver(s *system.System) {
	for i := SAVER_STEPS; i > 0 && s.PollAllRows() == 0; i-- {
		scroll(s, s.Red())
		scroll(s, s.Green())
		s.Delay(SAVER_STEP_FRAMES)
	}
}
