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

// Package term shows a simulated board on a terminal and presses its
// buttons from the keyboard.
package term

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	xterm "golang.org/x/term"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/machine"
)

const (
	// Terminals report key presses only, so a press is held this long.
	HOLD_TIME    = 150 * time.Millisecond
	REFRESH_TIME = 20 * time.Millisecond

	KEY_QUIT = 0x1B
)

const HELP = "keys q w e / a s d / z x c press buttons, esc quits"

type Terminal struct {
	In    *os.File
	Out   io.Writer
	Board *board.Simulated
}

func New(in *os.File, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out, Board: &board.Simulated{}}
}

func (t *Terminal) Pins() machine.Pins {
	return t.Board
}

func (t *Terminal) readKeys(ctx context.Context, raw bool, keys chan<- byte) {
	buf := make([]byte, 1)

	for ctx.Err() == nil {
		n, err := t.In.Read(buf)

		if n > 0 {
			select {
			case keys <- buf[0]:
			case <-ctx.Done():
				return
			}
		}

		// Raw reads time out with nothing read
		if err == io.EOF && raw {
			continue
		}

		if err != nil {
			return
		}
	}
}

func (t *Terminal) width() int {
	if f, ok := t.Out.(*os.File); ok {
		if width, _, err := xterm.GetSize(int(f.Fd())); err == nil {
			return width
		}
	}

	return 0
}

func (t *Terminal) Run(ctx context.Context, mc *machine.Machine) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.Board.OnChange = host.PinChanger(mc)

	fd := int(t.In.Fd())
	raw := xterm.IsTerminal(fd)

	if raw {
		restore, err := enterRawTerm(fd)

		if err != nil {
			return err
		}

		defer exitRawTerm(fd, restore)
	}

	fmt.Fprint(t.Out, "\033[2J")
	defer fmt.Fprint(t.Out, "\r\n")

	keys := make(chan byte)
	go t.readKeys(ctx, raw, keys)

	ticker := time.NewTicker(REFRESH_TIME)
	defer ticker.Stop()

	held := make(map[[2]int]time.Time)

	for {
		select {
		case <-ctx.Done():
			return nil

		case key := <-keys:
			if key == KEY_QUIT {
				return nil
			}

			if button, ok := host.Buttons[rune(key)|0x20]; ok {
				t.Board.Press(button[0], button[1])
				held[button] = time.Now().Add(HOLD_TIME)
			}

		case now := <-ticker.C:
			for button, until := range held {
				if now.After(until) {
					t.Board.Release(button[0], button[1])
					delete(held, button)
				}
			}

			var ticks uint64
			mc.Inspect(func(state *machine.MachineState) {
				ticks = state.Ticks
			})

			img := t.Board.Glow(ticks)
			status := HELP

			// The clock is stopped, so nothing fades by itself
			if mc.SleepMode() == machine.SLEEP_POWERDOWN {
				img = board.Image{}
				status = "powered down, press any button"
			}

			fmt.Fprint(t.Out, Render(img, t.width(), status))
		}
	}
}

func (t *Terminal) Close() error {
	return nil
}
