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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

// Decodes a hexidecimal string in the formats: 0xFF, xFF
func DecodeHex(s string) (uint8, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 8)

	if err != nil {
		return 0, err
	}

	return uint8(result), nil
}

// Decodes a binary string in the formats: 0b101, b101
func DecodeBinary(s string) (uint8, error) {
	if i := strings.IndexAny(s, "bB"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid binary string")
	}

	result, err := strconv.ParseUint(s, 0, 8)

	if err != nil {
		return 0, err
	}

	return uint8(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (int, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil {
		return 0, err
	}

	return int(result), nil
}

// Decodes a register value in any of the hex, binary or base-10 formats
func DecodeByte(s string) (uint8, error) {
	if value, err := DecodeHex(s); err == nil {
		return value, nil
	}

	if value, err := DecodeBinary(s); err == nil {
		return value, nil
	}

	value, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	if value < 0 || value > 0xFF {
		return 0, errors.New("Value out of range")
	}

	return uint8(value), nil
}

// Decodes a button name "row,column" with both in 0..2
func DecodeButton(s string) (row, column int, err error) {
	fields := strings.Split(s, ",")

	if len(fields) != 2 {
		return 0, 0, errors.New("Invalid button, expected row,column")
	}

	if row, err = DecodeInt(strings.TrimSpace(fields[0])); err != nil {
		return 0, 0, err
	}

	if column, err = DecodeInt(strings.TrimSpace(fields[1])); err != nil {
		return 0, 0, err
	}

	if row < 0 || row > 2 || column < 0 || column > 2 {
		return 0, 0, errors.New("Button out of range")
	}

	return row, column, nil
}
