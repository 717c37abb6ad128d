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

// Package frame converts between the live three-row bitmaps and the packed
// nine-bit frames kept in the stored animation.
//
// Bit layout of a packed frame value (letters are screen positions, one
// plane; 0 = lit):
//
//	ABC
//	DEF    value: GHDEFABC    tail: I
//	GHI
package frame

// Rows is one color plane as row bitmaps, active low in bits 0..2.
type Rows [3]uint8

// Unpack expands a packed value and its tail bit into row bitmaps. Bits
// above the low three of each row are left as they fall out of the
// shifts.
func Unpack(value uint8, tail uint8) Rows {
	return Rows{
		value,
		value >> 3,
		((value >> 5) & 6) | (tail & 1),
	}
}

// Pack collects the eight dense bits of a plane. The ninth bit (row 2,
// column 2) is dropped; see Tail.
func Pack(rows Rows) uint8 {
	return (rows[0] & 7) | ((rows[1] & 7) << 3) | ((rows[2] & 6) << 5)
}

func Tail(rows Rows) uint8 {
	return rows[2] & 1
}

// Fill returns a plane with every row set to value.
func Fill(value uint8) Rows {
	return Rows{value, value, value}
}
