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

package assembler

import (
	"fmt"
	"strings"
)

type TokenType uint
type DirectiveType uint

type Cursor struct {
	Line     int
	Column   int
	Byte     int64
	Size     int64
	LineByte int64
}

type Token struct {
	Type     TokenType
	Position Cursor
	Value    string
}

// SymTable maps compiled frames back to the source they came from.
type SymTable struct {
	Source  string
	Symbols map[uint8]int64
	Labels  map[uint8]string
}

type TokenError interface {
	GetPosition() Cursor
}

func tokenTypeName(tokenType TokenType) string {
	switch tokenType {
	case TOKEN_IDENT:
		return "Identifier"
	case TOKEN_DIRECTIVE:
		return "Directive"
	case TOKEN_PIXELS:
		return "Pixels"
	}

	return "<invalid>"
}

type InvalidOperandError struct {
	Position Cursor
	Required []TokenType
	Received TokenType
}

func (err *InvalidOperandError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidOperandError) Error() string {
	var requiredString string

	requiredStrings := make([]string, 0, len(err.Required))

	for _, tokenType := range err.Required {
		requiredStrings = append(requiredStrings, tokenTypeName(tokenType))
	}

	if count := len(requiredStrings); count == 1 {
		requiredString = requiredStrings[0]
	} else if count == 2 {
		requiredString = requiredStrings[0] + " or " + requiredStrings[1]
	} else if count > 2 {
		requiredString = strings.Join(
			requiredStrings[:len(requiredStrings)-1], ", ",
		) + ", or " + requiredStrings[len(requiredStrings)-1]
	}

	return fmt.Sprintf(
		"%02d:%02d: Invalid operands\n\twant:%s\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		requiredString,
		tokenTypeName(err.Received),
	)
}

type InvalidNumArgumentsError struct {
	Position Cursor
	Required int
	Received int
}

func (err *InvalidNumArgumentsError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidNumArgumentsError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid number of arguments\n\twant:%d\n\thave:%v",
		err.Position.Line,
		err.Position.Column,
		err.Required,
		err.Received,
	)
}

type InvalidRowWidthError struct {
	Position Cursor
	Received int
}

func (err *InvalidRowWidthError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidRowWidthError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid row width\n\twant:3\n\thave:%d",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type IncompleteFrameError struct {
	Position Cursor
	Received int
}

func (err *IncompleteFrameError) GetPosition() Cursor {
	return err.Position
}

func (err *IncompleteFrameError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Incomplete frame\n\twant:3 rows\n\thave:%d",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type OversizedFrameError struct {
	Position Cursor
}

func (err *OversizedFrameError) GetPosition() Cursor {
	return err.Position
}

func (err *OversizedFrameError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Frame exceeds 3 rows",
		err.Position.Line,
		err.Position.Column,
	)
}

type RowOutsideFrameError struct {
	Position Cursor
}

func (err *RowOutsideFrameError) GetPosition() Cursor {
	return err.Position
}

func (err *RowOutsideFrameError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Row outside of a .FRAME",
		err.Position.Line,
		err.Position.Column,
	)
}

type UnexpectedCharacterError struct {
	Position Cursor
	Received rune
}

func (err *UnexpectedCharacterError) GetPosition() Cursor {
	return err.Position
}

func (err *UnexpectedCharacterError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Unexpected character %c",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type OversizedCharacterError struct {
	Position Cursor
}

func (err *OversizedCharacterError) GetPosition() Cursor {
	return err.Position
}

func (err *OversizedCharacterError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Character exceeds ASCII limit",
		err.Position.Line,
		err.Position.Column,
	)
}

type RedeclaredLabelError struct {
	Position Cursor
	Received string
}

func (err *RedeclaredLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Redeclaration of label '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type UnknownLabelError struct {
	Position Cursor
	Received string
}

func (err *UnknownLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *UnknownLabelError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Unknown label '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type UnknownIdentifierError struct {
	Position Cursor
	Received string
}

func (err *UnknownIdentifierError) GetPosition() Cursor {
	return err.Position
}

func (err *UnknownIdentifierError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Unknown identifier '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type OversizedAnimationError struct {
	Position Cursor
}

func (err *OversizedAnimationError) GetPosition() Cursor {
	return err.Position
}

func (err *OversizedAnimationError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Animation exceeds 20 frames",
		err.Position.Line,
		err.Position.Column,
	)
}
