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

// Package cdev runs the firmware against real GPIO lines through the
// Linux GPIO character device.
package cdev

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/warthog618/go-gpiocdev"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/host"
	"github.com/lassandro/aliendie/pkg/machine"
)

const DEFAULT_CHIP = "gpiochip0"

type Board struct {
	host.GPIOPins

	lines   map[board.Line]*gpiocdev.Line
	changes chan struct{}
}

// ParseOffset accepts a bare line offset or a GPIO name such as GPIO17.
func ParseOffset(name string) (int, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(name), "GPIO")
	offset, err := strconv.Atoi(trimmed)

	if err != nil || offset < 0 {
		return 0, fmt.Errorf("Invalid line offset '%s'", name)
	}

	return offset, nil
}

func Open(chip string, lines host.LineMap) (*Board, error) {
	b := &Board{
		lines:   make(map[board.Line]*gpiocdev.Line),
		changes: make(chan struct{}, 1),
	}
	b.GPIOPins.Lines = b

	for line, name := range lines {
		offset, err := ParseOffset(name)

		if err != nil {
			b.Close()
			return nil, err
		}

		var l *gpiocdev.Line

		if host.IsInput(line) {
			l, err = gpiocdev.RequestLine(
				chip, offset,
				gpiocdev.AsInput,
				gpiocdev.WithPullUp,
				gpiocdev.WithBothEdges,
				gpiocdev.WithEventHandler(b.handleEvent),
			)
		} else {
			l, err = gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
		}

		if err != nil {
			b.Close()
			return nil, fmt.Errorf("%s (%s:%d): %w", line, chip, offset, err)
		}

		b.lines[line] = l
	}

	return b, nil
}

// Events arrive on the library's goroutine; only the fact that something
// changed is kept.
func (b *Board) handleEvent(evt gpiocdev.LineEvent) {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

func (b *Board) Pins() machine.Pins {
	return b
}

func (b *Board) Set(line board.Line, high bool) error {
	value := 0

	if high {
		value = 1
	}

	return b.lines[line].SetValue(value)
}

func (b *Board) Get(line board.Line) (bool, error) {
	value, err := b.lines[line].Value()

	return value != 0, err
}

// Run turns line events on the button inputs into pin change interrupts.
func (b *Board) Run(ctx context.Context, mc *machine.Machine) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.changes:
			mc.PinChange()
		}
	}
}

func (b *Board) Close() error {
	var first error

	for line, l := range b.lines {
		if err := l.Close(); err != nil && first == nil {
			first = fmt.Errorf("%s: %w", line, err)
		}
	}

	b.lines = make(map[board.Line]*gpiocdev.Line)

	return first
}
