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

package machine_test

import (
	"context"
	"testing"
	"time"

	"github.com/lassandro/aliendie/pkg/machine"
)

type testPins struct {
	drives int
	pinb   uint8
}

func (p *testPins) Drive(state *machine.MachineState) {
	p.drives++
}

func (p *testPins) Sense(state *machine.MachineState) uint8 {
	return p.pinb
}

type testDebugger struct {
	steps  int
	reads  []machine.Register
	writes []machine.Register
}

func (dbg *testDebugger) Step(mc *machine.Machine) {
	dbg.steps++
}

func (dbg *testDebugger) Read(reg machine.Register, mc *machine.Machine) {
	dbg.reads = append(dbg.reads, reg)
}

func (dbg *testDebugger) Write(reg machine.Register, mc *machine.Machine) {
	dbg.writes = append(dbg.writes, reg)
}

func newTestMachine(pins *testPins) *machine.Machine {
	var mc machine.Machine
	mc.Devices = &machine.DeviceHandler{Pins: pins}

	mc.Cli()
	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_RUN)
	mc.Write(machine.REG_TIMSK, machine.TIMSK_OCIE1A)
	mc.Write(machine.REG_MCUCR, machine.MCUCR_SLEEP_IDLE)
	mc.Sei()

	return &mc
}

func TestRegisterNames(t *testing.T) {
	for reg := machine.REG_PORTA; reg < machine.REG_COUNT; reg++ {
		parsed, ok := machine.ParseRegister(reg.String())

		if !ok || parsed != reg {
			t.Errorf(
				"Register name mismatch\nwant:%s\nhave:%s (ok=%v)",
				reg, parsed, ok,
			)
		}
	}

	if reg, ok := machine.ParseRegister("portb"); !ok || reg != machine.REG_PORTB {
		t.Error("Register names should parse regardless of case")
	}

	if _, ok := machine.ParseRegister("SREG"); ok {
		t.Error("Unknown register name parsed")
	}
}

func TestWriteDrivesPins(t *testing.T) {
	tests := []struct {
		Name  string
		Reg   machine.Register
		Drive bool
	}{
		{"PORTA", machine.REG_PORTA, true},
		{"DDRB", machine.REG_DDRB, true},
		{"PORTD", machine.REG_PORTD, true},
		{"MCUCR", machine.REG_MCUCR, false},
		{"TCCR1B", machine.REG_TCCR1B, false},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var pins testPins
			var mc machine.Machine
			mc.Devices = &machine.DeviceHandler{Pins: &pins}

			mc.Write(test.Reg, 0x5A)

			if have := mc.State.Registers[test.Reg]; have != 0x5A {
				t.Errorf("Register mismatch\nwant:%#02x\nhave:%#02x", 0x5A, have)
			}

			if test.Drive && pins.drives != 1 {
				t.Errorf("Drive count mismatch\nwant:1\nhave:%d", pins.drives)
			} else if !test.Drive && pins.drives != 0 {
				t.Errorf("Drive count mismatch\nwant:0\nhave:%d", pins.drives)
			}
		})
	}
}

func TestPINBReadsPins(t *testing.T) {
	pins := testPins{pinb: 0xE7}
	var dbg testDebugger
	var mc machine.Machine
	mc.Devices = &machine.DeviceHandler{Pins: &pins}
	mc.Debugger = &dbg

	mc.Write(machine.REG_PINB, 0x00)

	if have := mc.Read(machine.REG_PINB); have != 0xE7 {
		t.Errorf("PINB mismatch\nwant:%#02x\nhave:%#02x", 0xE7, have)
	}

	if len(dbg.writes) != 0 {
		t.Error("Write to read-only PINB reached the debugger")
	}

	if len(dbg.reads) != 1 || dbg.reads[0] != machine.REG_PINB {
		t.Errorf("Debugger reads mismatch\nwant:[PINB]\nhave:%v", dbg.reads)
	}
}

func TestTick(t *testing.T) {
	var pins testPins
	var dbg testDebugger
	mc := newTestMachine(&pins)
	mc.Debugger = &dbg

	vectors := 0
	mc.Vectors.Timer = func() { vectors++ }

	for i := 0; i < 5; i++ {
		if !mc.Tick() {
			t.Fatal("Tick with a running timer did not run the vector")
		}
	}

	mc.Cli()
	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_STOP)
	mc.Sei()

	if mc.Tick() {
		t.Error("Tick with a stopped timer ran the vector")
	}

	if vectors != 5 || dbg.steps != 5 {
		t.Errorf(
			"Vector count mismatch\nwant:5 vectors, 5 steps\nhave:%d vectors, %d steps",
			vectors, dbg.steps,
		)
	}

	if mc.State.Ticks != 5 {
		t.Errorf("Tick count mismatch\nwant:5\nhave:%d", mc.State.Ticks)
	}
}

func TestSleepModes(t *testing.T) {
	tests := []struct {
		Name  string
		MCUCR uint8
		Mode  machine.SleepMode
	}{
		{"Disabled", 0x00, machine.SLEEP_NONE},
		{"Idle", machine.MCUCR_SLEEP_IDLE, machine.SLEEP_IDLE},
		{"PowerDown", machine.MCUCR_SLEEP_POWERDOWN, machine.SLEEP_POWERDOWN},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var mc machine.Machine
			mc.Write(machine.REG_MCUCR, test.MCUCR)

			if have := mc.SleepMode(); have != test.Mode {
				t.Errorf("Sleep mode mismatch\nwant:%d\nhave:%d", test.Mode, have)
			}
		})
	}
}

func TestVirtualIdleSleepTicks(t *testing.T) {
	var pins testPins
	mc := newTestMachine(&pins)

	vectors := 0
	mc.Vectors.Timer = func() { vectors++ }

	for i := 0; i < 3; i++ {
		mc.Sleep()
	}

	if vectors != 3 {
		t.Errorf("Vector count mismatch\nwant:3\nhave:%d", vectors)
	}
}

func TestVirtualPowerDownWakesOnPinChange(t *testing.T) {
	pins := testPins{pinb: 0xFF}
	mc := newTestMachine(&pins)

	wakes := 0
	mc.Vectors.PinChange = func() { wakes++ }

	mc.Cli()
	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_STOP)
	mc.Write(machine.REG_MCUCR, machine.MCUCR_SLEEP_POWERDOWN)
	mc.Write(machine.REG_GIMSK, machine.GIMSK_PCIE)
	mc.Write(machine.REG_PCMSK, 0x38)
	mc.Sei()

	idles := 0
	mc.Idle = func(mc *machine.Machine) {
		idles++

		if idles == 3 {
			// A change outside the mask is ignored
			pins.pinb = 0xFE
		} else if idles == 5 {
			pins.pinb = 0xEE
		}
	}

	mc.Sleep()

	if wakes != 1 {
		t.Errorf("Wake count mismatch\nwant:1\nhave:%d", wakes)
	}

	if idles != 5 {
		t.Errorf("Idle count mismatch\nwant:5\nhave:%d", idles)
	}
}

func TestRealtimeHaltEndsSleepers(t *testing.T) {
	var pins testPins
	mc := newTestMachine(&pins)

	ticks := make(chan struct{}, 1)
	mc.Vectors.Timer = func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	clock := mc.Start(ctx, time.Millisecond)

	returned := false
	exited := make(chan struct{})

	go func() {
		defer close(exited)

		mc.Sleep()
		<-ticks

		mc.Cli()
		mc.Write(machine.REG_TCCR1B, machine.TCCR1B_STOP)
		mc.Sei()

		cancel()
		mc.Sleep()
		returned = true
	}()

	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleeper did not exit after halt")
	}

	<-clock

	if returned {
		t.Error("Sleep returned on a halted machine")
	}

	if !mc.Halted() {
		t.Error("Machine not halted after its clock stopped")
	}
}

func armPowerDown(mc *machine.Machine) {
	mc.Cli()
	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_STOP)
	mc.Write(machine.REG_MCUCR, machine.MCUCR_SLEEP_POWERDOWN)
	mc.Write(machine.REG_GIMSK, machine.GIMSK_PCIE)
	mc.Write(machine.REG_PCMSK, 0x38)
	mc.Sei()
}

func TestVirtualPowerDownWakeBeforeSleep(t *testing.T) {
	pins := testPins{pinb: 0xFF}
	mc := newTestMachine(&pins)
	armPowerDown(mc)

	// Pressed after arming, before the sleep instruction
	pins.pinb = 0xF7

	if !mc.PinChange() {
		t.Fatal("Pin change vector did not run")
	}

	mc.Idle = func(mc *machine.Machine) {
		t.Fatal("Sleep missed the pending wake")
	}

	mc.Sleep()
}

func TestRealtimePowerDownWakeBeforeSleep(t *testing.T) {
	pins := testPins{pinb: 0xFF}
	mc := newTestMachine(&pins)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := mc.Start(ctx, time.Millisecond)
	armPowerDown(mc)

	mc.Cli()
	pins.pinb = 0xF7
	mc.Sei()

	if !mc.PinChange() {
		t.Fatal("Pin change vector did not run")
	}

	slept := make(chan struct{})

	go func() {
		defer close(slept)
		mc.Sleep()
	}()

	select {
	case <-slept:
	case <-time.After(5 * time.Second):
		t.Fatal("Sleep missed the pending wake")
	}

	cancel()
	<-clock
}
