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

package machine

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"
)

func (reg Register) String() string {
	if reg < REG_COUNT {
		return registerNames[reg]
	}

	return "<invalid>"
}

// Parses a register name such as "PORTB", ignoring case.
func ParseRegister(name string) (Register, bool) {
	for i, regname := range registerNames {
		if strings.EqualFold(regname, name) {
			return Register(i), true
		}
	}

	return REG_COUNT, false
}

func (ms *MachineState) Reset() {
	for i := range ms.Registers {
		ms.Registers[i] = 0x00
	}

	ms.Interrupts = false
	ms.Ticks = 0
}

func (mc *Machine) cond() *sync.Cond {
	if mc.wakeup == nil {
		mc.wakeup = sync.NewCond(&mc.lock)
	}

	return mc.wakeup
}

func (mc *Machine) sense() uint8 {
	if mc.Devices != nil && mc.Devices.Pins != nil {
		return mc.Devices.Pins.Sense(&mc.State)
	}

	// Nothing attached: every input floats high
	return 0xFF
}

// Read returns a register value. Callers run inside a vector or between
// Cli and Sei.
func (mc *Machine) Read(reg Register) uint8 {
	if reg == REG_PINB {
		mc.State.Registers[REG_PINB] = mc.sense()
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(reg, mc)
	}

	return mc.State.Registers[reg]
}

// Write stores a register value and lets the attached pins react. Callers
// run inside a vector or between Cli and Sei.
func (mc *Machine) Write(reg Register, value uint8) {
	if reg == REG_PINB {
		return
	}

	mc.State.Registers[reg] = value

	switch reg {
	case REG_PORTA, REG_DDRA, REG_PORTB, REG_DDRB, REG_PORTD, REG_DDRD:
		if mc.Devices != nil && mc.Devices.Pins != nil {
			mc.Devices.Pins.Drive(&mc.State)
		}

	case REG_GIMSK, REG_PCMSK:
		// Pin changes are measured from the level seen at arming time, and
		// a power-down sleep wakes on any change raised since then
		mc.lastPINB = mc.sense()
		mc.armed = mc.wakes
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(reg, mc)
	}
}

// Cli clears the global interrupt flag. Vectors are held off until Sei.
// Sleep must not be called between Cli and Sei.
func (mc *Machine) Cli() {
	mc.lock.Lock()
	mc.State.Interrupts = false
}

// Sei sets the global interrupt flag, releasing any pending vector.
func (mc *Machine) Sei() {
	mc.State.Interrupts = true
	mc.lock.Unlock()
}

func (mc *Machine) sleepMode() SleepMode {
	mcucr := mc.State.Registers[REG_MCUCR]

	if mcucr&MCUCR_SLEEP_ENABLE == 0 {
		return SLEEP_NONE
	} else if mcucr&MCUCR_SLEEP_MODE != 0 {
		return SLEEP_POWERDOWN
	}

	return SLEEP_IDLE
}

func (mc *Machine) SleepMode() SleepMode {
	mc.lock.Lock()
	defer mc.lock.Unlock()

	return mc.sleepMode()
}

func (mc *Machine) timerRunning() bool {
	return mc.State.Registers[REG_TCCR1B] != TCCR1B_STOP &&
		mc.State.Registers[REG_TIMSK]&TIMSK_OCIE1A != 0
}

// Tick is one compare match of the refresh timer. It runs the timer vector
// when the timer is running and interrupts are enabled, and reports
// whether it did.
func (mc *Machine) Tick() bool {
	mc.lock.Lock()
	defer mc.lock.Unlock()

	if !mc.timerRunning() {
		return false
	}

	mc.State.Ticks++

	if !mc.State.Interrupts {
		return false
	}

	if mc.Vectors.Timer != nil {
		mc.Vectors.Timer()
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	mc.irqs++
	mc.cond().Broadcast()

	return true
}

// PinChange is raised by the pins whenever an input level may have moved.
// The vector fires when an armed PINB line differs from the level seen
// when the mask was armed.
func (mc *Machine) PinChange() bool {
	mc.lock.Lock()
	defer mc.lock.Unlock()

	return mc.pinChange()
}

func (mc *Machine) pinChange() bool {
	if !mc.State.Interrupts ||
		mc.State.Registers[REG_GIMSK]&GIMSK_PCIE == 0 {
		return false
	}

	pinb := mc.sense()
	changed := (pinb ^ mc.lastPINB) & mc.State.Registers[REG_PCMSK]
	mc.lastPINB = pinb

	if changed == 0 {
		return false
	}

	if mc.Vectors.PinChange != nil {
		mc.Vectors.PinChange()
	}

	mc.wakes++
	mc.cond().Broadcast()

	return true
}

// Sleep executes the sleep instruction in the mode selected by MCUCR.
//
// In real time (see Start) an idle sleep blocks until the next timer tick,
// and a power-down sleep until a pin change raised after the pin-change
// mask was last armed. In virtual time an idle sleep delivers the next
// timer tick itself, and a power-down sleep polls the pins, calling Idle
// between polls, until a pin change wakes it.
//
// Once the machine is halted Sleep does not return: it ends the calling
// goroutine with runtime.Goexit.
func (mc *Machine) Sleep() {
	mc.lock.Lock()
	mode := mc.sleepMode()

	if mode == SLEEP_NONE {
		mc.lock.Unlock()
		return
	}

	if !mc.realtime {
		halted := mc.halted
		mc.lock.Unlock()

		if halted {
			runtime.Goexit()
		}

		mc.sleepVirtual(mode)
		return
	}

	cond := mc.cond()

	if mode == SLEEP_IDLE {
		seq := mc.irqs
		for mc.irqs == seq && !mc.halted {
			cond.Wait()
		}
	} else {
		for mc.wakes == mc.armed && !mc.halted {
			cond.Wait()
		}
	}

	halted := mc.halted
	mc.lock.Unlock()

	if halted {
		runtime.Goexit()
	}
}

func (mc *Machine) sleepVirtual(mode SleepMode) {
	if mode == SLEEP_IDLE {
		if !mc.Tick() {
			panic("Idle sleep with the timer interrupt disabled")
		}

		return
	}

	for {
		mc.PinChange()

		if mc.woken() {
			return
		}

		if mc.Idle == nil {
			panic("Power-down sleep with no wake source")
		}

		mc.Idle(mc)
	}
}

func (mc *Machine) woken() bool {
	mc.lock.Lock()
	defer mc.lock.Unlock()

	return mc.wakes != mc.armed
}

// Start switches the machine to real time and delivers a timer tick every
// period until ctx is done, at which point the machine halts. The returned
// channel is closed once the clock has stopped.
func (mc *Machine) Start(ctx context.Context, period time.Duration) <-chan struct{} {
	mc.lock.Lock()
	mc.realtime = true
	mc.halted = false
	mc.lock.Unlock()

	done := make(chan struct{})

	go func() {
		defer close(done)
		defer mc.Halt()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mc.Tick()
			}
		}
	}()

	return done
}

// Halt stops the machine for good. Sleeping and future sleeping callers
// exit their goroutines.
func (mc *Machine) Halt() {
	mc.lock.Lock()
	mc.halted = true
	mc.cond().Broadcast()
	mc.lock.Unlock()
}

func (mc *Machine) Halted() bool {
	mc.lock.Lock()
	defer mc.lock.Unlock()

	return mc.halted
}

// Inspect runs fn with interrupts held off, for hosts that read the pins
// or registers from outside the firmware.
func (mc *Machine) Inspect(fn func(state *MachineState)) {
	mc.lock.Lock()
	defer mc.lock.Unlock()

	fn(&mc.State)
}
