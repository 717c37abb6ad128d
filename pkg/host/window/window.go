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

// Package window shows a simulated board in a desktop window. Buttons are
// pressed with the keyboard or the mouse.
package window

import (
	"context"
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/machine"
)

const (
	CELL_SIZE   = 96
	LED_RADIUS  = 30
	FOOTER_SIZE = 32

	SCREEN_WIDTH  = board.COLUMNS * CELL_SIZE
	SCREEN_HEIGHT = board.ROWS*CELL_SIZE + FOOTER_SIZE
)

const HELP = "q w e / a s d / z x c or click, esc quits"

var (
	backgroundColor = color.RGBA{0x10, 0x10, 0x14, 0xFF}
	rimColor        = color.RGBA{0x40, 0x40, 0x48, 0xFF}

	ledColors = map[board.Pixel]color.RGBA{
		board.PIXEL_RED:    {0xFF, 0x30, 0x20, 0xFF},
		board.PIXEL_GREEN:  {0x30, 0xFF, 0x40, 0xFF},
		board.PIXEL_YELLOW: {0xFF, 0xD0, 0x20, 0xFF},
	}
)

var keys = map[ebiten.Key][2]int{
	ebiten.KeyQ: {0, 0}, ebiten.KeyW: {0, 1}, ebiten.KeyE: {0, 2},
	ebiten.KeyA: {1, 0}, ebiten.KeyS: {1, 1}, ebiten.KeyD: {1, 2},
	ebiten.KeyZ: {2, 0}, ebiten.KeyX: {2, 1}, ebiten.KeyC: {2, 2},
}

type Window struct {
	Board *board.Simulated

	ctx   context.Context
	mc    *machine.Machine
	image board.Image
	dark  bool
}

func New() *Window {
	return &Window{Board: &board.Simulated{}}
}

func (w *Window) Pins() machine.Pins {
	return w.Board
}

// Run must be called from the main goroutine.
func (w *Window) Run(ctx context.Context, mc *machine.Machine) error {
	w.ctx = ctx
	w.mc = mc
	w.Board.OnChange = host.PinChanger(mc)

	ebiten.SetWindowSize(SCREEN_WIDTH*2, SCREEN_HEIGHT*2)
	ebiten.SetWindowTitle("AlienDie")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}

	return nil
}

// CellAt returns the button under a point of the logical screen.
func CellAt(x, y int) (row, column int, ok bool) {
	if x < 0 || y < 0 || x >= SCREEN_WIDTH || y >= board.ROWS*CELL_SIZE {
		return 0, 0, false
	}

	return y / CELL_SIZE, x / CELL_SIZE, true
}

func (w *Window) pressed() uint16 {
	var mask uint16

	for key, button := range keys {
		if ebiten.IsKeyPressed(key) {
			mask |= board.ButtonMask(button[0], button[1])
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if row, column, ok := CellAt(ebiten.CursorPosition()); ok {
			mask |= board.ButtonMask(row, column)
		}
	}

	return mask
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if w.ctx.Err() != nil || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	w.Board.SetPressed(w.pressed())

	var ticks uint64
	w.mc.Inspect(func(state *machine.MachineState) {
		ticks = state.Ticks
	})

	// The clock is stopped, so nothing fades by itself
	w.dark = w.mc.SleepMode() == machine.SLEEP_POWERDOWN

	if w.dark {
		w.image = board.Image{}
	} else {
		w.image = w.Board.Glow(ticks)
	}

	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	for row := 0; row < board.ROWS; row++ {
		for column := 0; column < board.COLUMNS; column++ {
			cx := float32(column*CELL_SIZE + CELL_SIZE/2)
			cy := float32(row*CELL_SIZE + CELL_SIZE/2)

			if clr, lit := ledColors[w.image[row][column]]; lit {
				vector.DrawFilledCircle(screen, cx, cy, LED_RADIUS, clr, true)
			}

			vector.StrokeCircle(screen, cx, cy, LED_RADIUS, 2, rimColor, true)
		}
	}

	status := HELP
	if w.dark {
		status = "powered down, press any button"
	}

	ebitenutil.DebugPrintAt(screen, status, 4, board.ROWS*CELL_SIZE+8)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return SCREEN_WIDTH, SCREEN_HEIGHT
}

func (w *Window) Close() error {
	return nil
}
