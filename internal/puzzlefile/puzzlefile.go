// Package puzzlefile parses the ">>"-prefixed puzzle file grammar (spec
// section 6.1) into a crossword.Puzzle. There is no parser-generator
// dependency in play here, so this is a small hand-rolled recursive-descent
// scanner over the grammar's handful of productions.
package puzzlefile

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/crossword-extravaganza/server/internal/crossword"
)

type parser struct {
	src []rune
	pos int
}

// Parse parses content against the puzzle file grammar and builds a Puzzle
// whose id is the filename stem of path (no directory, no ".puzzle" suffix).
func Parse(path string, content []byte) (*crossword.Puzzle, error) {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	p := &parser{src: []rune(string(content))}
	p.skipWhitespace()
	if err := p.expectLiteral(">>"); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	description, err := p.parseString()
	if err != nil {
		return nil, err
	}

	if !p.skipNewline() {
		return nil, p.errorf("expected a newline after the puzzle header")
	}
	p.skipWhitespace()

	var entries []crossword.Entry
	for {
		p.skipWhitespace()
		if p.atEnd() {
			break
		}
		entry, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	puzzle, err := crossword.NewPuzzle(id, name, description, entries)
	if err != nil {
		return nil, fmt.Errorf("puzzlefile: %s: %w", path, err)
	}
	return puzzle, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("puzzlefile: at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// skipWhitespace consumes spaces, tabs, CR, LF, and "//" line comments.
func (p *parser) skipWhitespace() {
	for !p.atEnd() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for !p.atEnd() && p.peek() != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// skipNewline consumes one or more newlines (possibly interleaved with other
// whitespace and comments), reporting whether at least one was seen.
func (p *parser) skipNewline() bool {
	start := p.pos
	saw := false
	for !p.atEnd() {
		switch c := p.peek(); {
		case c == '\n':
			saw = true
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for !p.atEnd() && p.peek() != '\n' {
				p.pos++
			}
		default:
			if !saw {
				p.pos = start
			}
			return saw
		}
	}
	return saw
}

func (p *parser) expectLiteral(lit string) error {
	for _, r := range lit {
		if p.atEnd() || p.peek() != r {
			return p.errorf("expected %q", lit)
		}
		p.pos++
	}
	return nil
}

// parseName reads a `name` token: a double-quoted string with no escapes or
// embedded quote/CR/LF/tab characters at all.
func (p *parser) parseName() (string, error) {
	if p.atEnd() || p.peek() != '"' {
		return "", p.errorf("expected a quoted name")
	}
	p.pos++
	start := p.pos
	for !p.atEnd() && p.peek() != '"' && p.peek() != '\r' && p.peek() != '\n' && p.peek() != '\t' {
		p.pos++
	}
	if p.atEnd() || p.peek() != '"' {
		return "", p.errorf("unterminated or invalid name")
	}
	name := string(p.src[start:p.pos])
	p.pos++
	if name == "" {
		return "", p.errorf("name must not be empty")
	}
	return name, nil
}

// parseString reads the general `string` token: a double-quoted string
// allowing the backslash escapes \\, \", \n, \r, \t.
func (p *parser) parseString() (string, error) {
	if p.atEnd() || p.peek() != '"' {
		return "", p.errorf("expected a quoted string")
	}
	p.pos++

	var b strings.Builder
	for {
		if p.atEnd() {
			return "", p.errorf("unterminated string")
		}
		switch c := p.peek(); c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\r', '\n':
			return "", p.errorf("string contains an unescaped newline")
		case '\\':
			p.pos++
			if p.atEnd() {
				return "", p.errorf("unterminated escape sequence")
			}
			switch esc := p.peek(); esc {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return "", p.errorf("invalid escape sequence \\%c", esc)
			}
			p.pos++
		default:
			b.WriteRune(c)
			p.pos++
		}
	}
}

// parseEntry reads `"(" wordName "," clue "," direction "," row "," col ")"`.
func (p *parser) parseEntry() (crossword.Entry, error) {
	if err := p.expectLiteral("("); err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	word, err := p.parseWordName()
	if err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	if err := p.expectLiteral(","); err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	clue, err := p.parseString()
	if err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	if err := p.expectLiteral(","); err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	direction, err := p.parseDirection()
	if err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	if err := p.expectLiteral(","); err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	row, err := p.parseInt()
	if err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	if err := p.expectLiteral(","); err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	col, err := p.parseInt()
	if err != nil {
		return crossword.Entry{}, err
	}
	p.skipWhitespace()
	if err := p.expectLiteral(")"); err != nil {
		return crossword.Entry{}, err
	}

	return crossword.NewEntry(word, clue, direction, row, col)
}

func (p *parser) parseWordName() (string, error) {
	start := p.pos
	for !p.atEnd() {
		c := p.peek()
		if (c >= 'a' && c <= 'z') || c == '-' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errorf("expected a word name ([a-z\\-]+)")
	}
	return string(p.src[start:p.pos]), nil
}

func (p *parser) parseDirection() (crossword.Direction, error) {
	for _, lit := range []string{"ACROSS", "DOWN"} {
		if p.pos+len(lit) <= len(p.src) && string(p.src[p.pos:p.pos+len(lit)]) == lit {
			p.pos += len(lit)
			return crossword.ParseDirection(lit)
		}
	}
	return 0, p.errorf("expected ACROSS or DOWN")
}

func (p *parser) parseInt() (int, error) {
	start := p.pos
	for !p.atEnd() && unicode.IsDigit(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected an integer")
	}
	n := 0
	for _, r := range p.src[start:p.pos] {
		n = n*10 + int(r-'0')
	}
	return n, nil
}
