package umat

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

// MaxListIndex is the largest accepted Key[N] index. Missing positions
// below an index are filled with None.
const MaxListIndex = 4096

// ParseProperties parses property text from bytes.
func ParseProperties(data []byte) (*Properties, error) {
	p := newParser(data)
	return p.parseFile()
}

// DecodeProperties parses property text from a reader.
func DecodeProperties(r io.Reader) (*Properties, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	return ParseProperties(buf.Bytes())
}

// DecodePropertiesFile parses a property file.
func DecodePropertiesFile(path string) (*Properties, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	props, err := ParseProperties(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return props, nil
}

// parser builds Properties from property text.
type parser struct {
	l *lexer // Lexer for the property text
}

// newParser creates a new parser.
func newParser(data []byte) *parser {
	return &parser{l: newLexer(data)}
}

// parseFile parses top-level entries until end of input.
func (p *parser) parseFile() (*Properties, error) {
	props := NewProperties()
	for {
		p.l.skipWhitespace()
		if p.l.eof {
			break
		}

		if err := p.parseEntry(props, 0); err != nil {
			return nil, err
		}

		// Top-level entries end at the line break.
		p.l.skipSpaces()
		if !p.l.atLineEnd() {
			return nil, p.errorf("unexpected %q after value", p.l.ch)
		}
	}

	return props, nil
}

// parseEntry parses Name = Value or Name[N] = Value into props.
func (p *parser) parseEntry(props *Properties, closer rune) error {
	name, idx, ok, err := p.parseName()
	if err != nil {
		return err
	}
	if !ok {
		return p.errorf("expected property name")
	}

	val, err := p.parseValue(closer)
	if err != nil {
		return err
	}

	if idx >= 0 {
		props.setIndex(name, idx, val)
		return nil
	}

	props.Set(name, val)
	return nil
}

// parseName reads a property name, an optional [N] index and the '=' sign.
// ok is false when the input at the current position is not a name assignment;
// the lexer is then left where it started.
func (p *parser) parseName() (name string, idx int, ok bool, err error) {
	start := p.l.mark()
	idx = -1

	if p.l.eof || !isIdentStart(p.l.ch) {
		return "", -1, false, nil
	}

	name = p.l.readIdent()
	p.l.skipSpaces()

	// Check if indexed
	if p.l.ch == '[' {
		p.l.read()
		p.l.skipSpaces()
		digits := p.l.readDigits()
		p.l.skipSpaces()
		if digits == "" || p.l.ch != ']' {
			p.l.reset(start)
			return "", -1, false, nil
		}
		p.l.read()
		p.l.skipSpaces()

		n, convErr := strconv.Atoi(digits)
		if convErr != nil {
			return "", -1, false, p.errorf("invalid index %q", digits)
		}
		if n > MaxListIndex {
			return "", -1, false, p.errorf("index %d out of range [0,%d]", n, MaxListIndex)
		}
		idx = n
	}

	if p.l.ch != '=' {
		p.l.reset(start)
		return "", -1, false, nil
	}
	p.l.read()
	p.l.skipSpaces()

	return name, idx, true, nil
}

// parseValue parses a value. closer is the closing character of the enclosing
// composite, or 0 at top level.
func (p *parser) parseValue(closer rune) (Value, error) {
	if p.l.atLineEnd() {
		// Name =
		// {
		//     ...
		// }
		if p.l.nextNonBlank() == '{' {
			p.l.skipWhitespace()
		} else {
			return Scalar(""), nil
		}
	}

	switch p.l.ch {
	case '(':
		return p.parseComposite('(', ')')
	case '{':
		return p.parseComposite('{', '}')
	case '"':
		s, err := p.l.readQuoted()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueScalar, Str: s, Quoted: true}, nil
	default:
		s := p.l.readScalar(closer)
		if s == "None" {
			return None(), nil
		}
		return Scalar(s), nil
	}
}

// parseComposite parses a struct or list enclosed by open/close.
// Named elements produce a struct, positional or indexed elements a list.
func (p *parser) parseComposite(open, close rune) (Value, error) {
	if p.l.ch != open {
		return Value{}, p.errorf("expected %q", open)
	}
	p.l.read()

	fields := NewProperties()
	var items []Value
	var indexed []Value
	named := 0

	for {
		p.l.skipSeparators()
		if p.l.eof {
			return Value{}, p.errorf("unterminated %q block", open)
		}
		if p.l.ch == close {
			p.l.read()
			break
		}

		name, idx, ok, err := p.parseName()
		if err != nil {
			return Value{}, err
		}

		v, err := p.parseValue(close)
		if err != nil {
			return Value{}, err
		}

		switch {
		case !ok:
			items = append(items, v)
		case idx >= 0:
			for len(indexed) <= idx {
				indexed = append(indexed, None())
			}
			indexed[idx] = v
		default:
			fields.Set(name, v)
			named++
		}

		// Elements are separated by commas or line breaks.
		p.l.skipSpaces()
		if !p.l.eof && p.l.ch != ',' && p.l.ch != '\n' && p.l.ch != close {
			return Value{}, p.errorf("expected ',' or %q", close)
		}
	}

	if named > 0 && (len(items) > 0 || len(indexed) > 0) {
		return Value{}, p.errorf("mixed named and positional elements")
	}

	switch {
	case len(indexed) > 0:
		return List(append(indexed, items...)...), nil
	case len(items) > 0:
		return List(items...), nil
	default:
		return Struct(fields), nil
	}
}

// errorf formats a parser error at the current position.
func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d:%d: %s", ErrParse, p.l.pos.line, p.l.pos.col, fmt.Sprintf(format, args...))
}
