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

// Package system assembles the firmware core around a machine and runs a
// program on it, restarting the program from scratch after every wake from
// power-down.
package system

import (
	"log"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/buttons"
	"github.com/lassandro/aliendie/pkg/display"
	"github.com/lassandro/aliendie/pkg/frame"
	"github.com/lassandro/aliendie/pkg/machine"
	"github.com/lassandro/aliendie/pkg/power"
	"github.com/lassandro/aliendie/pkg/random"
)

type Program func(s *System)

type System struct {
	Machine *machine.Machine

	// The stored animation, the only state that outlives a power-down.
	Message *frame.Animation

	// Persist saves Message before every power-down. May be nil.
	Persist func(message *frame.Animation) error

	// Boot, restart and power events. May be nil.
	Logger *log.Logger

	// Foreground state, rebuilt on every start
	Frame   *display.FrameBuffer
	Refresh *display.Refresher
	Timer   *display.Timer
	Power   *power.Manager
	Buttons *buttons.Debouncer
	Random  *random.Generator

	Starts int
}

func New(mc *machine.Machine, message *frame.Animation) *System {
	if message == nil {
		message = &frame.Animation{}
	}

	return &System{Machine: mc, Message: message}
}

func (s *System) Logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// Reset is the program entry point: it discards all foreground state,
// installs the vectors and programs ports, timer and sleep mode.
func (s *System) Reset() {
	fb := &display.FrameBuffer{}
	fb.Red.Fill(0xFF)
	fb.Green.Fill(0xFF)

	rng := &random.Generator{}
	pm := &power.Manager{
		Machine:     s.Machine,
		OnPowerDown: s.powerDown,
		OnWake:      s.wake,
	}
	timer := &display.Timer{Frame: fb, Sleeper: pm}

	mc := s.Machine

	// Hosts inspect these from the vector context
	mc.Cli()
	s.Frame = fb
	s.Refresh = &display.Refresher{Machine: mc, Frame: fb}
	s.Random = rng
	s.Power = pm
	s.Timer = timer
	s.Buttons = &buttons.Debouncer{
		Samples: fb,
		Power:   pm,
		Timer:   timer,
		Random:  rng,
	}
	s.Starts++

	mc.Vectors.Timer = s.Refresh.Interrupt
	pm.Install()

	mc.Write(machine.REG_DDRB, board.DDRB_INIT)
	mc.Write(machine.REG_DDRA, board.DDRA_INIT)
	mc.Write(machine.REG_DDRD, board.DDRD_INIT)
	mc.Write(machine.REG_PORTA, board.PORTA_IDLE)
	mc.Write(machine.REG_PORTD, board.PORTD_IDLE)

	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_RUN)
	mc.Write(machine.REG_TIMSK, machine.TIMSK_OCIE1A)

	mc.Write(machine.REG_GIMSK, 0)
	mc.Write(machine.REG_PCMSK, 0)
	mc.Write(machine.REG_MCUCR, machine.MCUCR_SLEEP_IDLE)
	mc.Sei()
}

func (s *System) powerDown() {
	s.Logf("Powering down after %d idle ticks", buttons.IDLE_TIMEOUT)

	if s.Persist != nil {
		if err := s.Persist(s.Message); err != nil {
			s.Logf("Error saving message: %v", err)
		}
	}
}

func (s *System) wake() {
	s.Logf("Woken by button, restarting")
}

// Boot runs program and runs it again from Reset every time it is ended by
// a power-down wake. Boot returns when program returns or the machine is
// halted.
func (s *System) Boot(program Program) {
	for s.start(program) {
	}
}

func (s *System) start(program Program) (restart bool) {
	done := make(chan struct{})
	finished := false

	go func() {
		defer close(done)

		s.Reset()
		program(s)
		finished = true
	}()

	<-done

	return !finished && !s.Machine.Halted()
}

func (s *System) Delay(frames uint8) {
	s.Timer.Delay(frames)
}

func (s *System) PollAllRows() uint8 {
	return s.Buttons.PollAllRows()
}

func (s *System) WaitForPress() {
	s.Buttons.WaitForPress()
}

func (s *System) Edges() [board.ROWS]uint8 {
	return s.Buttons.Edges
}

func (s *System) Next() uint8 {
	return s.Random.Next()
}

func (s *System) Red() *display.Plane {
	return &s.Frame.Red
}

func (s *System) Green() *display.Plane {
	return &s.Frame.Green
}

// Clear turns every LED off.
func (s *System) Clear() {
	s.Frame.Red.Fill(0x07)
	s.Frame.Green.Fill(0x07)
}

// Show loads frame i of the stored message onto the matrix.
func (s *System) Show(i int) {
	red, green := s.Message.Load(i)

	s.Frame.Red.SetRows(red)
	s.Frame.Green.SetRows(green)
}
