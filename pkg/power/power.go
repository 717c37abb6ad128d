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

// Package power switches the microcontroller between its two sleep depths.
package power

import (
	"runtime"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/machine"
)

type Manager struct {
	Machine *machine.Machine

	// OnPowerDown runs just before the power-down sleep, OnWake just
	// after the wake-up. Either may be nil.
	OnPowerDown func()
	OnWake      func()
}

// Install claims the pin-change vector. The vector only wakes the sleeper;
// the restart happens in PowerDown once the foreground runs again.
func (pm *Manager) Install() {
	pm.Machine.Vectors.PinChange = func() {}
}

// Idle sleeps until the next interrupt. The timer and the refresh keep
// running.
func (pm *Manager) Idle() {
	pm.Machine.Sleep()
}

// PowerDown stops the refresh timer, turns the matrix off, arms the button
// lines as a wake source and sleeps in the lowest power mode.
//
// PowerDown does not return. After the wake-up it ends the calling
// goroutine, and with it every frame of the foreground program; the
// program is restarted from its entry point by system.Boot. Nothing held
// in foreground variables survives.
func (pm *Manager) PowerDown() {
	mc := pm.Machine

	mc.Cli()
	mc.Write(machine.REG_TCCR1B, machine.TCCR1B_STOP)
	mc.Write(machine.REG_MCUCR, machine.MCUCR_SLEEP_POWERDOWN)
	mc.Write(machine.REG_PORTA, 0)
	mc.Write(machine.REG_PORTD, 0)
	mc.Write(machine.REG_PORTB, board.BUTTON_LINES)
	mc.Write(machine.REG_GIMSK, machine.GIMSK_PCIE)
	mc.Write(machine.REG_PCMSK, board.BUTTON_LINES)
	mc.Sei()

	if pm.OnPowerDown != nil {
		pm.OnPowerDown()
	}

	mc.Sleep()

	if pm.OnWake != nil {
		pm.OnWake()
	}

	runtime.Goexit()
}
