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

package cdev_test

import (
	"testing"

	"github.com/lassandro/aliendie/pkg/host/cdev"
)

func TestParseOffset(t *testing.T) {
	table := []struct {
		name   string
		offset int
		fails  bool
	}{
		{"17", 17, false},
		{"GPIO17", 17, false},
		{"gpio4", 4, false},
		{"GPIO", 0, true},
		{"-3", 0, true},
		{"PB3", 0, true},
	}

	for _, test := range table {
		offset, err := cdev.ParseOffset(test.name)

		if test.fails {
			if err == nil {
				t.Errorf("ParseOffset(%q) did not fail", test.name)
			}

			continue
		}

		if err != nil || offset != test.offset {
			t.Errorf("ParseOffset(%q) mismatch\nwant:%d\nhave:%d %v",
				test.name, test.offset, offset, err)
		}
	}
}
