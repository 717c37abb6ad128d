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

package frame

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Frames held by a stored animation.
const MAX_FRAMES = 20

const (
	animationMagic   = "ALDI"
	animationVersion = 1
	// magic(4) + version(1) + size(1) + reds + greens + tails + crc(4)
	AnimationSerializeSize = 4 + 1 + 1 + MAX_FRAMES*2 + TAIL_BYTES + 4
)

// Two tail bits per frame, four frames per byte.
const TAIL_BYTES = (MAX_FRAMES + 3) / 4

var (
	ErrBadMagic    = errors.New("Not an animation file")
	ErrVersion     = errors.New("Unsupported animation version")
	ErrBadChecksum = errors.New("Animation checksum mismatch")
	ErrSize        = errors.New("Animation frame count out of range")
)

// Animation is the message kept across power-down: up to MAX_FRAMES
// frames of two planes, eight bits each packed densely, and the two tail
// bits of every frame packed four frames to a byte.
type Animation struct {
	Size   uint8
	Reds   [MAX_FRAMES]uint8
	Greens [MAX_FRAMES]uint8
	Tails  [TAIL_BYTES]uint8
}

func tailShift(i int) uint {
	return uint(i&3) << 1
}

// Store packs both planes into frame i. Size is left alone.
func (a *Animation) Store(i int, red, green Rows) {
	a.Reds[i] = Pack(red)
	a.Greens[i] = Pack(green)

	shift := tailShift(i)
	bits := Tail(red) | Tail(green)<<1
	a.Tails[i>>2] = (a.Tails[i>>2] &^ (3 << shift)) | bits<<shift
}

// Load unpacks frame i into both planes.
func (a *Animation) Load(i int) (red, green Rows) {
	tail := a.Tails[i>>2] >> tailShift(i)

	return Unpack(a.Reds[i], tail), Unpack(a.Greens[i], tail>>1)
}

func (a *Animation) MarshalBinary() ([]byte, error) {
	data := make([]byte, 0, AnimationSerializeSize)

	data = append(data, animationMagic...)
	data = append(data, animationVersion, a.Size)
	data = append(data, a.Reds[:]...)
	data = append(data, a.Greens[:]...)
	data = append(data, a.Tails[:]...)
	data = binary.LittleEndian.AppendUint32(data, crc32.ChecksumIEEE(data))

	return data, nil
}

func (a *Animation) UnmarshalBinary(data []byte) error {
	if len(data) != AnimationSerializeSize ||
		string(data[:4]) != animationMagic {
		return ErrBadMagic
	}

	if data[4] != animationVersion {
		return ErrVersion
	}

	body := data[:len(data)-4]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(data[len(body):]) {
		return ErrBadChecksum
	}

	if data[5] > MAX_FRAMES {
		return ErrSize
	}

	offset := 5
	a.Size = data[offset]
	offset++
	offset += copy(a.Reds[:], data[offset:])
	offset += copy(a.Greens[:], data[offset:])
	copy(a.Tails[:], data[offset:])

	return nil
}
