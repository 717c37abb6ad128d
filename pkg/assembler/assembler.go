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
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/lassandro/aliendie/pkg/board"
	"github.com/lassandro/aliendie/pkg/frame"
)

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".FRAME") {
		return DIRECTIVE_FRAME
	} else if strings.EqualFold(ident, ".COPY") {
		return DIRECTIVE_COPY
	} else if strings.EqualFold(ident, ".END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

func isIdentChar(char rune) bool {
	return char == '_' || unicode.IsLetter(char) || unicode.IsDigit(char)
}

// Reports whether the run starting at s is a directive rather than a row
// of pixels that happens to begin with an unlit one.
func isDirective(s string) bool {
	if end := strings.IndexFunc(s, func(char rune) bool {
		return char == ';' || unicode.IsSpace(char)
	}); end >= 0 {
		s = s[:end]
	}

	if len(s) < 2 || s[0] != '.' {
		return false
	}

	for _, char := range s {
		if _, ok := board.ParsePixel(char); !ok {
			return true
		}
	}

	return false
}

// Splits a line into tokens. A line is either a directive followed by
// identifiers, or a row of pixels that may be spread over several tokens.
func tokenizeLine(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenStart int
	var tokenType TokenType = TOKEN_NONE

	flush := func() {
		if builder.Len() == 0 {
			return
		}

		tokens = append(tokens, Token{
			Type: tokenType,
			Position: Cursor{
				Line:     cursor.Line,
				Column:   tokenStart,
				Byte:     cursor.LineByte + int64(tokenStart-1),
				Size:     int64(builder.Len()),
				LineByte: cursor.LineByte,
			},
			Value: builder.String(),
		})

		builder.Reset()
		tokenType = TOKEN_NONE
	}

	for column, char := range line {
		cursor.Column = column + 1

		// Comments
		if char == ';' {
			break
		}

		if unicode.IsSpace(char) {
			flush()
			continue
		}

		if char > unicode.MaxASCII {
			errs = append(errs, &OversizedCharacterError{cursor})
			continue
		}

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column

			switch {
			case len(tokens) > 0 && tokens[0].Type != TOKEN_PIXELS:
				tokenType = TOKEN_IDENT

			case len(tokens) == 0 && isDirective(line[column:]):
				tokenType = TOKEN_DIRECTIVE

			default:
				tokenType = TOKEN_PIXELS
			}
		}

		switch tokenType {
		case TOKEN_DIRECTIVE:
			if builder.Len() > 0 && !isIdentChar(char) {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		case TOKEN_IDENT:
			if !isIdentChar(char) {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}

		case TOKEN_PIXELS:
			if _, ok := board.ParsePixel(char); !ok {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
				continue
			}
		}

		builder.WriteRune(char)
	}

	flush()

	return tokens, errs
}

// AssembleAnimation compiles frame source into a stored animation. Each
// frame opens with .FRAME (optionally labelled) and holds three rows of
// three pixels, written with '.', 'R', 'G' and 'Y'. .COPY label repeats a
// labelled frame and .END stops the assembler.
func AssembleAnimation(input io.Reader, symtable *SymTable) (result *frame.Animation, errs []error) {
	type openFrame struct {
		Image    board.Image
		Rows     int
		Position Cursor
		Discard  bool
	}

	var labels = make(map[string]int)
	var frames []board.Image
	var current *openFrame

	var scanner = bufio.NewScanner(input)
	var cursor = Cursor{Line: 1}

	errs = make([]error, 0)

	if symtable != nil {
		symtable.Symbols = make(map[uint8]int64)
		symtable.Labels = make(map[uint8]string)
	}

	closeFrame := func() {
		if current == nil {
			return
		}

		if current.Rows != board.ROWS {
			errs = append(
				errs, &IncompleteFrameError{current.Position, current.Rows},
			)
		}

		if !current.Discard {
			frames = append(frames, current.Image)
		}

		current = nil
	}

	// Checks there is room for one more frame and records where it came
	// from.
	reserveFrame := func(keyword *Token, label *Token) bool {
		if len(frames) >= frame.MAX_FRAMES {
			errs = append(errs, &OversizedAnimationError{keyword.Position})
			return false
		}

		index := len(frames)

		if symtable != nil {
			symtable.Symbols[uint8(index)] = keyword.Position.LineByte
		}

		if label != nil {
			if _, exists := labels[label.Value]; exists {
				errs = append(
					errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			} else {
				labels[label.Value] = index

				if symtable != nil {
					symtable.Labels[uint8(index)] = label.Value
				}
			}
		}

		return true
	}

	ended := false

	for !ended && scanner.Scan() {
		line := scanner.Text()
		cursor.Size = int64(len(line))

		tokens, lineErrs := tokenizeLine(line, cursor)
		errs = append(errs, lineErrs...)

		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte += int64(len(line) + 1)

		if len(tokens) == 0 || len(lineErrs) > 0 {
			continue
		}

		keyword := &tokens[0]
		operands := tokens[1:]

		if keyword.Type == TOKEN_PIXELS {
			var row []board.Pixel

			for _, token := range tokens {
				for _, char := range token.Value {
					pixel, _ := board.ParsePixel(char)
					row = append(row, pixel)
				}
			}

			if current == nil {
				errs = append(errs, &RowOutsideFrameError{keyword.Position})
				continue
			}

			if current.Rows == board.ROWS {
				errs = append(errs, &OversizedFrameError{keyword.Position})
				continue
			}

			if len(row) != board.COLUMNS {
				errs = append(
					errs, &InvalidRowWidthError{keyword.Position, len(row)},
				)
				continue
			}

			copy(current.Image[current.Rows][:], row)
			current.Rows++
			continue
		}

		switch parseDirective(keyword.Value) {
		case DIRECTIVE_FRAME:
			if len(operands) > 1 {
				errs = append(errs, &InvalidNumArgumentsError{
					keyword.Position, 1, len(operands),
				})
				continue
			}

			closeFrame()

			var label *Token
			if len(operands) == 1 {
				label = &operands[0]
			}

			// Rows of a frame that does not fit are still consumed
			current = &openFrame{
				Position: keyword.Position,
				Discard:  !reserveFrame(keyword, label),
			}

		case DIRECTIVE_COPY:
			if len(operands) != 1 {
				errs = append(errs, &InvalidNumArgumentsError{
					keyword.Position, 1, len(operands),
				})
				continue
			}

			closeFrame()

			source, exists := labels[operands[0].Value]

			if !exists {
				errs = append(errs, &UnknownLabelError{
					operands[0].Position, operands[0].Value,
				})
				continue
			}

			if reserveFrame(keyword, nil) {
				frames = append(frames, frames[source])
			}

		case DIRECTIVE_END:
			if len(operands) != 0 {
				errs = append(errs, &InvalidNumArgumentsError{
					keyword.Position, 0, len(operands),
				})
				continue
			}

			ended = true

		default:
			errs = append(
				errs, &UnknownIdentifierError{keyword.Position, keyword.Value},
			)
		}
	}

	closeFrame()

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	result = &frame.Animation{Size: uint8(len(frames))}

	for i, img := range frames {
		result.Store(
			i,
			img.Bitmap(board.COLOR_RED),
			img.Bitmap(board.COLOR_GREEN),
		)
	}

	return result, errs
}

// DisassembleAnimation writes an animation back out as source, using
// labels where known.
func DisassembleAnimation(output io.Writer, anim *frame.Animation, labels map[uint8]string) error {
	var builder strings.Builder

	for i := 0; i < int(anim.Size); i++ {
		red, green := anim.Load(i)
		img := board.ImageOf(red, green)

		builder.WriteString(".FRAME")

		if label, exists := labels[uint8(i)]; exists {
			builder.WriteString(" " + label)
		}

		builder.WriteString("\n" + img.String() + "\n")
	}

	builder.WriteString(".END\n")

	_, err := io.WriteString(output, builder.String())

	return err
}
