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
	"sync"
)

// Pins is the physical side of the I/O ports: whatever is soldered to the
// port lines. Both calls run with interrupts disabled.
type Pins interface {
	// Drive is called after every write to a port or direction register.
	Drive(state *MachineState)
	// Sense returns the level on the PINB input lines.
	Sense(state *MachineState) uint8
}

type DeviceHandler struct {
	Pins Pins
}

type MachineState struct {
	Registers  [REG_COUNT]uint8
	Interrupts bool
	Ticks      uint64
}

// Vectors are the interrupt handlers installed by the firmware.
type Vectors struct {
	Timer     func()
	PinChange func()
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(reg Register, mc *Machine)
	Write(reg Register, mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger
	Vectors  Vectors

	// Idle runs when a virtual-time machine sleeps in power-down mode
	// and no wake is pending. Hosts and tests use it to move the world
	// forward (press a button).
	Idle func(mc *Machine)

	lock     sync.Mutex
	wakeup   *sync.Cond
	realtime bool
	halted   bool
	irqs     uint64
	wakes    uint64
	armed    uint64
	lastPINB uint8
}
