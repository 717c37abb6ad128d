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

import "time"

type Register uint8

// I/O registers of the microcontroller that the firmware touches.
const (
	REG_PORTA Register = iota
	REG_DDRA
	REG_PORTB
	REG_DDRB
	REG_PINB
	REG_PORTD
	REG_DDRD
	REG_TCCR1B
	REG_TIMSK
	REG_MCUCR
	REG_GIMSK
	REG_PCMSK

	REG_COUNT
)

var registerNames = [REG_COUNT]string{
	"PORTA", "DDRA", "PORTB", "DDRB", "PINB", "PORTD", "DDRD",
	"TCCR1B", "TIMSK", "MCUCR", "GIMSK", "PCMSK",
}

const (
	// Timer 1 in CTC mode with a 1/64 prescaler
	TCCR1B_RUN  uint8 = 0x0B
	TCCR1B_STOP uint8 = 0x00

	// Output compare A interrupt enable
	TIMSK_OCIE1A uint8 = 1 << 6

	// Sleep enable plus sleep mode select
	MCUCR_SLEEP_IDLE      uint8 = 0x20
	MCUCR_SLEEP_POWERDOWN uint8 = 0x30
	MCUCR_SLEEP_ENABLE    uint8 = 0x20
	MCUCR_SLEEP_MODE      uint8 = 0x10

	// Pin change interrupt enable
	GIMSK_PCIE uint8 = 0x20
)

type SleepMode uint8

const (
	SLEEP_NONE SleepMode = iota
	SLEEP_IDLE
	SLEEP_POWERDOWN
)

// Compare-match period of the refresh timer: 16 x 64 clocks at 1 MHz.
const TICK_PERIOD = 1024 * time.Microsecond
