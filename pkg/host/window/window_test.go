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

package window_test

import (
	"testing"

	"github.com/lassandro/aliendie/pkg/host/window"
)

func TestCellAt(t *testing.T) {
	tests := []struct {
		Name   string
		X, Y   int
		Row    int
		Column int
		OK     bool
	}{
		{"Origin", 0, 0, 0, 0, true},
		{"First Cell Edge", window.CELL_SIZE - 1, window.CELL_SIZE - 1, 0, 0, true},
		{"Second Column", window.CELL_SIZE, 0, 0, 1, true},
		{"Center", window.SCREEN_WIDTH / 2, window.CELL_SIZE * 3 / 2, 1, 1, true},
		{"Last Cell", window.SCREEN_WIDTH - 1, 3*window.CELL_SIZE - 1, 2, 2, true},
		{"Right Of Board", window.SCREEN_WIDTH, 0, 0, 0, false},
		{"Footer", 0, 3 * window.CELL_SIZE, 0, 0, false},
		{"Negative", -1, 5, 0, 0, false},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			row, column, ok := window.CellAt(test.X, test.Y)

			if ok != test.OK {
				t.Fatalf("Hit mismatch\nwant:%v\nhave:%v", test.OK, ok)
			}

			if ok && (row != test.Row || column != test.Column) {
				t.Errorf(
					"Cell mismatch\nwant:%d,%d\nhave:%d,%d",
					test.Row, test.Column, row, column,
				)
			}
		})
	}
}
