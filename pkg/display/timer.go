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

package display

// Sleeper halts the foreground until the next interrupt.
type Sleeper interface {
	Idle()
}

// Timer measures time in refresh frames, the only clock the firmware has.
type Timer struct {
	Frame   *FrameBuffer
	Sleeper Sleeper
}

// Delay returns after exactly frames frame wraps of the refresh vector,
// sleeping between ticks.
func (t *Timer) Delay(frames uint8) {
	t.Frame.SetCountdown(frames)

	for t.Frame.Countdown() != 0 {
		t.Sleeper.Idle()
	}
}
