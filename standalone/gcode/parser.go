package gcode

import (
	"errors"
)

var (
	// ErrBadNumber is returned when a word letter is not followed by a number
	ErrBadNumber = errors.New("bad number format")

	// ErrUnclosedComment is returned for a "(" comment without ")"
	ErrUnclosedComment = errors.New("unclosed comment")
)

// Parser handles G-code parsing
type Parser struct{}

// NewParser creates a new G-code parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine parses a single line of G-code.
// Blank lines return a nil command.
func (p *Parser) ParseLine(line string) (*Command, error) {
	cmd := &Command{
		Parameters: make(map[byte]float64),
	}

	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++

		case c == ';':
			cmd.Comment = line[i+1:]
			i = len(line)

		case c == '%':
			// program delimiter
			i++

		case c == '*':
			// checksum, not verified here
			i = len(line)

		case c == '(':
			end := i + 1
			for end < len(line) && line[end] != ')' {
				end++
			}
			if end >= len(line) {
				return nil, ErrUnclosedComment
			}
			cmd.Comment = line[i+1 : end]
			i = end + 1

		case isLetter(c):
			letter := toUpper(c)
			i++
			value, next := parseFloat(line, i)
			if next <= i {
				return nil, wordError(letter)
			}
			i = next

			switch {
			case letter == 'N' && cmd.Type == 0 && len(cmd.Parameters) == 0:
				cmd.Line = int(value)
			case cmd.Type == 0 && (letter == 'G' || letter == 'M' || letter == 'T'):
				cmd.Type = letter
				cmd.Number = int(value)
			default:
				cmd.Parameters[letter] = value
			}

		default:
			return nil, ErrBadNumber
		}
	}

	if cmd.Type == 0 && len(cmd.Parameters) == 0 && cmd.Comment == "" && cmd.Line == 0 {
		return nil, nil
	}
	return cmd, nil
}

func wordError(letter byte) error {
	return &WordError{Letter: letter}
}

// WordError reports a word letter with a missing or malformed value
type WordError struct {
	Letter byte
}

func (e *WordError) Error() string {
	return "bad number format for word " + string(e.Letter)
}

func (e *WordError) Unwrap() error { return ErrBadNumber }

// parseFloat parses a floating-point number from the string starting at pos.
// The returned position equals pos when no number was found.
func parseFloat(s string, pos int) (float64, int) {
	start := pos
	if pos >= len(s) {
		return 0, start
	}

	negative := false
	if s[pos] == '-' {
		negative = true
		pos++
	} else if s[pos] == '+' {
		pos++
	}

	digitsStart := pos
	intPart := 0.0
	fracPart := 0.0
	fracDigits := 0

	// Parse integer part
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		intPart = intPart*10 + float64(s[pos]-'0')
		pos++
	}
	intDigits := pos - digitsStart

	// Parse fractional part
	if pos < len(s) && s[pos] == '.' {
		pos++
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			fracPart = fracPart*10.0 + float64(s[pos]-'0')
			fracDigits++
			pos++
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return 0, start
	}

	value := intPart
	if fracDigits > 0 {
		divisor := 1.0
		for i := 0; i < fracDigits; i++ {
			divisor *= 10.0
		}
		value += fracPart / divisor
	}

	if negative {
		value = -value
	}

	return value, pos
}

// isLetter checks if a byte is a letter
func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// toUpper converts a byte to uppercase
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
