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

package term_test

import (
	"strings"
	"testing"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/host/term"
)

func TestRender(t *testing.T) {
	var img board.Image
	img[1][1] = board.PIXEL_YELLOW

	out := term.Render(img, 40, "status")

	if !strings.HasPrefix(out, "\033[H") {
		t.Errorf("Render does not home the cursor\nhave:%q", out)
	}

	lines := strings.Split(out, "\r\n")

	// Three board rows, a blank line, the status and a trailing empty
	if len(lines) != 6 {
		t.Fatalf("Line count mismatch\nwant:6\nhave:%d", len(lines))
	}

	margin := (40 - term.BOARD_WIDTH) / 2
	row := strings.TrimPrefix(lines[1], strings.Repeat(" ", margin))

	if row == lines[1] {
		t.Errorf("Row not centered\nhave:%q", lines[1])
	}

	if strings.Count(row, "\033[1;33m") != 1 || strings.Count(row, "\033[1;30m") != 2 {
		t.Errorf("Middle row mismatch\nhave:%q", row)
	}

	if !strings.HasPrefix(lines[4], "status") {
		t.Errorf("Status mismatch\nhave:%q", lines[4])
	}
}

func TestRenderNarrow(t *testing.T) {
	out := term.Render(board.Image{}, 0, "")

	if strings.Contains(out, "\033[H ") {
		t.Errorf("Narrow render has a margin\nhave:%q", out)
	}
}
