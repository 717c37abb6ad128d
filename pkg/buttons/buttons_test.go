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

package buttons_test

import (
	"testing"

	"github.com/lassandro/aliendie/pkg/buttons"
)

type samples [3]uint8

func (s *samples) Sample(row int) uint8 {
	return s[row]
}

// Runs script on every idle and panics with powerDownSentinel on power-down.
type fakePower struct {
	idles     int
	powerDown int
	script    func(idle int)
}

type powerDownSentinel struct{}

func (p *fakePower) Idle() {
	p.idles++

	if p.script != nil {
		p.script(p.idles)
	}
}

func (p *fakePower) PowerDown() {
	p.powerDown++
	panic(powerDownSentinel{})
}

type fakeTimer struct {
	delays []uint8
}

func (t *fakeTimer) Delay(frames uint8) {
	t.delays = append(t.delays, frames)
}

type fakeRandom struct {
	entropy []uint16
}

func (r *fakeRandom) Reseed(entropy uint16) {
	r.entropy = append(r.entropy, entropy)
}

func TestSampleRowEdge(t *testing.T) {
	table := []struct {
		previous uint8
		sample   uint8
		edges    uint8
	}{
		{0x7, 0x7, 0x0},
		{0x7, 0x6, 0x1},
		{0x7, 0x0, 0x7},
		{0x6, 0x6, 0x0},
		{0x6, 0x4, 0x2},
		{0x0, 0x7, 0x0},
		{0x0, 0x0, 0x0},
		{0x5, 0x2, 0x5},
		// Lines above the three buttons are ignored
		{0x7, 0xFE, 0x1},
	}

	for _, test := range table {
		s := samples{test.sample}
		d := buttons.Debouncer{Samples: &s}
		d.Previous[0] = test.previous

		if have := d.SampleRowEdge(0); have != test.edges {
			t.Errorf(
				"Edges for %03b -> %03b\nwant:%03b\nhave:%03b",
				test.previous, test.sample, test.edges, have,
			)
		}

		if d.Previous[0] != test.sample&7 {
			t.Errorf("Previous mismatch\nwant:%03b\nhave:%03b",
				test.sample&7, d.Previous[0])
		}
	}
}

func TestHeldButtonReportedOnce(t *testing.T) {
	s := samples{0x7, 0x7, 0x7}
	d := buttons.Debouncer{Samples: &s}

	// Boot: the first poll only primes Previous
	if have := d.PollAllRows(); have != 0 {
		t.Fatalf("Boot poll mismatch\nwant:0\nhave:%03b", have)
	}

	s[1] = 0x3

	if have := d.PollAllRows(); have != 0x4 {
		t.Errorf("Press poll mismatch\nwant:100\nhave:%03b", have)
	}

	if !d.Pressed(1, 0) || d.Chord() != 1<<3 {
		t.Errorf("Pressed button mismatch\nwant:(1,0)\nhave:%v %09b",
			d.Edges, d.Chord())
	}

	for i := 0; i < 5; i++ {
		if have := d.PollAllRows(); have != 0 {
			t.Errorf("Held poll %d mismatch\nwant:0\nhave:%03b", i, have)
		}
	}

	s[1] = 0x7
	d.PollAllRows()
	s[1] = 0x3

	if have := d.PollAllRows(); have != 0x4 {
		t.Errorf("Second press mismatch\nwant:100\nhave:%03b", have)
	}
}

func TestButtonHeldThroughBoot(t *testing.T) {
	s := samples{0x7, 0x7, 0x3}
	d := buttons.Debouncer{Samples: &s}

	if have := d.PollAllRows(); have != 0 {
		t.Errorf("Held button reported\nwant:0\nhave:%03b", have)
	}
}

func TestWaitForPress(t *testing.T) {
	s := samples{0x7, 0x7, 0x7}
	power := fakePower{}
	timer := fakeTimer{}
	rng := fakeRandom{}

	d := buttons.Debouncer{
		Samples: &s,
		Power:   &power,
		Timer:   &timer,
		Random:  &rng,
	}

	const pressAt = 40

	power.script = func(idle int) {
		if idle == pressAt {
			s[2] = 0x5
		}
	}

	d.WaitForPress()

	if power.idles != pressAt {
		t.Errorf("Idle count mismatch\nwant:%d\nhave:%d", pressAt, power.idles)
	}

	if len(rng.entropy) != 1 || rng.entropy[0] != buttons.IDLE_TIMEOUT-pressAt {
		t.Errorf("Reseed mismatch\nwant:[%d]\nhave:%v",
			buttons.IDLE_TIMEOUT-pressAt, rng.entropy)
	}

	if len(timer.delays) != 1 || timer.delays[0] != buttons.SETTLE_FRAMES {
		t.Errorf("Settle delay mismatch\nwant:[2]\nhave:%v", timer.delays)
	}

	if !d.Pressed(2, 1) {
		t.Errorf("Pressed button mismatch\nwant:(2,1)\nhave:%v", d.Edges)
	}
}

func TestWaitForPressTimeout(t *testing.T) {
	s := samples{0x7, 0x7, 0x7}
	power := fakePower{}
	rng := fakeRandom{}

	d := buttons.Debouncer{
		Samples: &s,
		Power:   &power,
		Timer:   &fakeTimer{},
		Random:  &rng,
	}

	func() {
		defer func() {
			if r := recover(); r != (powerDownSentinel{}) {
				panic(r)
			}
		}()

		d.WaitForPress()
	}()

	if power.idles != int(buttons.IDLE_TIMEOUT) {
		t.Errorf("Idle count mismatch\nwant:%d\nhave:%d",
			buttons.IDLE_TIMEOUT, power.idles)
	}

	if power.powerDown != 1 {
		t.Errorf("Power-down count mismatch\nwant:1\nhave:%d", power.powerDown)
	}

	if len(rng.entropy) != 0 {
		t.Errorf("Reseeded before power-down: %v", rng.entropy)
	}
}
