package umat

import (
	"fmt"
	"strings"
	"unicode"
)

// lexer scans property text. It works on an in-memory rune slice because
// multi-line blocks need lookahead past the end of the current line.
type lexer struct {
	src []rune   // Input text
	pos position // Current position
	ch  rune     // Current character
	eof bool     // End of input
}

// position represents a position in the input.
type position struct {
	off  int // Rune offset
	line int // Line number
	col  int // Column number
}

// newLexer creates a new lexer over data.
func newLexer(data []byte) *lexer {
	l := &lexer{src: []rune(string(data)), pos: position{off: -1, line: 1, col: 0}}
	l.read()
	if l.ch == 0xFEFF {
		// Skip UTF-8 BOM if present.
		l.read()
	}

	return l
}

// read advances to the next character.
func (l *lexer) read() {
	if l.pos.off >= 0 && l.pos.off < len(l.src) && l.src[l.pos.off] == '\n' {
		l.pos.line++
		l.pos.col = 0
	}

	l.pos.off++
	if l.pos.off >= len(l.src) {
		l.eof = true
		l.ch = 0
		return
	}

	l.pos.col++
	l.ch = l.src[l.pos.off]
}

// mark returns the current lexer state for backtracking.
func (l *lexer) mark() position { return l.pos }

// reset restores a state returned by mark.
func (l *lexer) reset(p position) {
	l.pos = p
	l.eof = p.off >= len(l.src)
	if l.eof {
		l.ch = 0
		return
	}
	l.ch = l.src[p.off]
}

// skipSpaces skips blanks on the current line.
func (l *lexer) skipSpaces() {
	for !l.eof && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r') {
		l.read()
	}
}

// skipWhitespace skips blanks, newlines and // comments.
func (l *lexer) skipWhitespace() {
	for !l.eof {
		if unicode.IsSpace(l.ch) {
			l.read()
			continue
		}

		if l.ch == '/' && l.peek() == '/' {
			for !l.eof && l.ch != '\n' {
				l.read()
			}
			continue
		}

		return
	}
}

// skipSeparators skips whitespace and commas between composite elements.
func (l *lexer) skipSeparators() {
	for {
		l.skipWhitespace()
		if l.eof || l.ch != ',' {
			return
		}
		l.read()
	}
}

// peek returns the character after the current one without consuming it.
func (l *lexer) peek() rune {
	if l.pos.off+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos.off+1]
}

// nextNonBlank returns the first character at or after the current one that is
// not whitespace, without consuming anything.
func (l *lexer) nextNonBlank() rune {
	for i := l.pos.off; i < len(l.src); i++ {
		if !unicode.IsSpace(l.src[i]) {
			return l.src[i]
		}
	}

	return 0
}

// atLineEnd reports whether only blanks remain on the current line.
func (l *lexer) atLineEnd() bool {
	return l.eof || l.ch == '\n'
}

// readIdent reads a property name.
func (l *lexer) readIdent() string {
	var b strings.Builder
	for !l.eof && isIdentPart(l.ch) {
		b.WriteRune(l.ch)
		l.read()
	}

	return b.String()
}

// readDigits reads a run of decimal digits.
func (l *lexer) readDigits() string {
	var b strings.Builder
	for !l.eof && unicode.IsDigit(l.ch) {
		b.WriteRune(l.ch)
		l.read()
	}

	return b.String()
}

// readScalar reads bare value text up to the end of the line or, inside a
// composite, up to a separator or the closing character. Quoted spans and
// nested parentheses do not terminate the value.
func (l *lexer) readScalar(closer rune) string {
	var b strings.Builder
	var quote rune
	depth := 0
	for !l.eof && l.ch != '\n' {
		switch {
		case quote != 0:
			if l.ch == quote {
				quote = 0
			}
		case l.ch == '\'' || l.ch == '"':
			quote = l.ch
		case l.ch == '(':
			depth++
		case l.ch == ')' && depth > 0:
			depth--
		case closer != 0 && depth == 0 && (l.ch == ',' || l.ch == closer):
			return strings.TrimSpace(b.String())
		}

		b.WriteRune(l.ch)
		l.read()
	}

	return strings.TrimSpace(b.String())
}

// readQuoted reads a double-quoted string.
func (l *lexer) readQuoted() (string, error) {
	l.read() // consume opening quote
	var b strings.Builder
	for {
		if l.eof || l.ch == '\n' {
			return "", l.errorf("unterminated string")
		}

		if l.ch == '"' {
			l.read()
			break
		}

		// Handle escaped characters.
		if l.ch == '\\' {
			next := l.peek()
			if next == '\\' || next == '"' {
				l.read()
				b.WriteRune(l.ch)
				l.read()
				continue
			}
		}
		b.WriteRune(l.ch)
		l.read()
	}

	return b.String(), nil
}

// errorf formats an error message at the current position.
func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d:%d: %s", ErrLex, l.pos.line, l.pos.col, fmt.Sprintf(format, args...))
}

// isIdentStart checks if a character can start a property name.
func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// isIdentPart checks if a character is a valid part of a property name.
func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
