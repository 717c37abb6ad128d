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
	"strings"
)

type Pixel uint8

const (
	PIXEL_OFF    Pixel = 0
	PIXEL_RED    Pixel = 1 << COLOR_RED
	PIXEL_GREEN  Pixel = 1 << COLOR_GREEN
	PIXEL_YELLOW Pixel = PIXEL_RED | PIXEL_GREEN
)

const pixelChars = ".RGY"

func PixelOf(color Color) Pixel {
	return 1 << color
}

func (p Pixel) Rune() rune {
	return rune(pixelChars[p&PIXEL_YELLOW])
}

// Parses one of the characters '.', 'R', 'G', 'Y' (any case).
func ParsePixel(r rune) (Pixel, bool) {
	if i := strings.IndexRune(pixelChars, toUpper(r)); i >= 0 {
		return Pixel(i), true
	}

	return PIXEL_OFF, false
}

func toUpper(r rune) rune {
	if 'a' <= r && r <= 'z' {
		return r - ('a' - 'A')
	}

	return r
}

// Image is what a person sees on the matrix, indexed [row][column].
type Image [ROWS][COLUMNS]Pixel

func (img Image) String() string {
	var sb strings.Builder

	for row := 0; row < ROWS; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}

		for column := 0; column < COLUMNS; column++ {
			sb.WriteRune(img[row][column].Rune())
		}
	}

	return sb.String()
}

// Bitmap returns the active-low row bitmap of one color, the form the
// refresh engine consumes.
func (img Image) Bitmap(color Color) (rows [ROWS]uint8) {
	for row := 0; row < ROWS; row++ {
		rows[row] = 0x07

		for column := 0; column < COLUMNS; column++ {
			if img[row][column]&PixelOf(color) != 0 {
				rows[row] &^= ColumnBit(column)
			}
		}
	}

	return rows
}

// ImageOf is the inverse of Bitmap over the low three bits of each row.
func ImageOf(red, green [ROWS]uint8) (img Image) {
	for row := 0; row < ROWS; row++ {
		for column := 0; column < COLUMNS; column++ {
			bit := ColumnBit(column)

			if red[row]&bit == 0 {
				img[row][column] |= PIXEL_RED
			}

			if green[row]&bit == 0 {
				img[row][column] |= PIXEL_GREEN
			}
		}
	}

	return img
}
