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

// Package periph runs the firmware against real GPIO lines through the
// periph.io driver registry.
package periph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	periphhost "periph.io/x/host/v3"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/machine"
)

// Edge waits time out this often so Run notices cancellation.
const EDGE_POLL = 100 * time.Millisecond

type Board struct {
	host.GPIOPins

	pins map[board.Line]gpio.PinIO
}

func Open(lines host.LineMap) (*Board, error) {
	if _, err := periphhost.Init(); err != nil {
		return nil, err
	}

	b := &Board{pins: make(map[board.Line]gpio.PinIO)}
	b.GPIOPins.Lines = b

	for line, name := range lines {
		pin := gpioreg.ByName(name)

		if pin == nil {
			b.Close()
			return nil, fmt.Errorf("Unknown GPIO pin '%s' for %s", name, line)
		}

		var err error

		if host.IsInput(line) {
			err = pin.In(gpio.PullUp, gpio.BothEdges)
		} else {
			err = pin.Out(gpio.Low)
		}

		if err != nil {
			b.Close()
			return nil, fmt.Errorf("%s (%s): %w", line, name, err)
		}

		b.pins[line] = pin
	}

	return b, nil
}

func (b *Board) Pins() machine.Pins {
	return b
}

func (b *Board) Set(line board.Line, high bool) error {
	return b.pins[line].Out(gpio.Level(high))
}

func (b *Board) Get(line board.Line) (bool, error) {
	return bool(b.pins[line].Read()), nil
}

// Run turns edges on the button lines into pin change interrupts.
func (b *Board) Run(ctx context.Context, mc *machine.Machine) error {
	var wg sync.WaitGroup

	for _, line := range board.INPUT_LINES {
		pin := b.pins[line]

		wg.Add(1)
		go func() {
			defer wg.Done()

			for ctx.Err() == nil {
				if pin.WaitForEdge(EDGE_POLL) {
					mc.PinChange()
				}
			}
		}()
	}

	wg.Wait()

	return nil
}

func (b *Board) Close() error {
	var first error

	for line, pin := range b.pins {
		if err := pin.Halt(); err != nil && first == nil {
			first = fmt.Errorf("%s: %w", line, err)
		}
	}

	b.pins = make(map[board.Line]gpio.PinIO)

	return first
}
