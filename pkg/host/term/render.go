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

package term

import (
	"strings"

	"github.com/lassandro/aliendie/pkg/board"
)

const (
	CELL_WIDTH  = 4
	BOARD_WIDTH = board.COLUMNS * CELL_WIDTH
)

var pixelCells = map[board.Pixel]string{
	board.PIXEL_OFF:    "\033[1;30m(·)\033[0m ",
	board.PIXEL_RED:    "\033[1;31m(●)\033[0m ",
	board.PIXEL_GREEN:  "\033[1;32m(●)\033[0m ",
	board.PIXEL_YELLOW: "\033[1;33m(●)\033[0m ",
}

// Render draws the board centered in a terminal of the given width, with
// the cursor parked at the top left. The status line goes underneath.
func Render(img board.Image, width int, status string) string {
	var sb strings.Builder

	margin := 0
	if width > BOARD_WIDTH {
		margin = (width - BOARD_WIDTH) / 2
	}

	sb.WriteString("\033[H")

	for row := 0; row < board.ROWS; row++ {
		sb.WriteString(strings.Repeat(" ", margin))

		for column := 0; column < board.COLUMNS; column++ {
			sb.WriteString(pixelCells[img[row][column]])
		}

		sb.WriteString("\033[K\r\n")
	}

	sb.WriteString("\r\n" + status + "\033[K\r\n")

	return sb.String()
}
