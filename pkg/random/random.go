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

// Package random is the toy's pseudo-random source: a 16-bit linear
// congruential step, reseeded by how long the player took to press a
// button. Good enough to pick a die face, nothing more.
package random

type Generator struct {
	Seed uint16
}

// Next steps seed = seed*5 + 12345 and returns bits 5..12 of the result.
func (g *Generator) Next() uint8 {
	g.Seed = (g.Seed << 2) + g.Seed + 12345
	return uint8(g.Seed >> 5)
}

func (g *Generator) Reseed(entropy uint16) {
	g.Seed += entropy
}
