package crossword

import (
	"fmt"
	"strings"
)

// Puzzle is the immutable solution to a crossword: a consistent set of
// entries that can be played by one or two players in a Match.
// Positions are 0-indexed.
type Puzzle struct {
	id          string
	name        string
	description string
	entries     []Entry
}

// NewPuzzle validates and constructs a Puzzle. entries must satisfy the
// consistency invariant (unique answers, no same-direction overlap, and
// agreeing letters at any across/down crossing).
func NewPuzzle(id, name, description string, entries []Entry) (*Puzzle, error) {
	if id == "" {
		return nil, fmt.Errorf("crossword: puzzle id is empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return nil, fmt.Errorf("crossword: puzzle id %q must not contain a path separator", id)
	}
	if strings.HasSuffix(id, ".puzzle") {
		return nil, fmt.Errorf("crossword: puzzle id %q must not carry the .puzzle suffix", id)
	}
	if name == "" {
		return nil, fmt.Errorf("crossword: puzzle name is empty")
	}
	if err := checkConsistent(entries); err != nil {
		return nil, err
	}

	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Puzzle{id: id, name: name, description: description, entries: cp}, nil
}

// checkConsistent implements the Puzzle invariant: unique answers
// (case-insensitive, already upper-cased by NewEntry), no two same-direction
// entries sharing a cell, and any across/down crossing agreeing on its letter.
// Geometrically an ACROSS entry (one row) and a DOWN entry (one column) can
// never cross at more than one cell, so "at most one crossing" needs no
// separate check beyond the letter-agreement test below.
func checkConsistent(entries []Entry) error {
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.Answer == b.Answer {
				return fmt.Errorf("crossword: duplicate answer %q", a.Answer)
			}

			if a.Direction == b.Direction {
				if a.Direction == Across {
					if a.Row == b.Row && b.Col <= a.end && a.Col <= b.end {
						return fmt.Errorf("crossword: two ACROSS entries overlap on row %d", a.Row)
					}
				} else {
					if a.Col == b.Col && b.Row <= a.end && a.Row <= b.end {
						return fmt.Errorf("crossword: two DOWN entries overlap on column %d", a.Col)
					}
				}
				continue
			}

			across, down := a, b
			if a.Direction == Down {
				across, down = b, a
			}
			idxAcross := down.Col - across.Col
			if idxAcross < 0 || idxAcross > across.end-across.Col {
				continue
			}
			idxDown := across.Row - down.Row
			if idxDown < 0 || idxDown > down.end-down.Row {
				continue
			}
			if across.Answer[idxAcross] != down.Answer[idxDown] {
				return fmt.Errorf("crossword: entries %q and %q disagree at their crossing", across.Answer, down.Answer)
			}
		}
	}
	return nil
}

func (p *Puzzle) ID() string          { return p.id }
func (p *Puzzle) Name() string        { return p.name }
func (p *Puzzle) Description() string { return p.description }

// Entries returns a defensive copy of the puzzle's entry list. List index + 1
// is the word id.
func (p *Puzzle) Entries() []Entry {
	cp := make([]Entry, len(p.entries))
	copy(cp, p.entries)
	return cp
}

// BoardSize returns the bounding grid (rows, cols): one more than the largest
// end row of any DOWN entry, by one more than the largest end column of any
// ACROSS entry. The rows of ACROSS entries and the columns of DOWN entries do
// not enlarge it, so a puzzle with no DOWN (or no ACROSS) entry has 0 rows
// (or 0 columns).
func (p *Puzzle) BoardSize() (rows, cols int) {
	maxRowEnd, maxColEnd := -1, -1
	for _, e := range p.entries {
		if e.Direction == Down && e.end > maxRowEnd {
			maxRowEnd = e.end
		}
		if e.Direction == Across && e.end > maxColEnd {
			maxColEnd = e.end
		}
	}
	return maxRowEnd + 1, maxColEnd + 1
}

// Contains reports whether pos is covered by some entry (i.e. is not a gap).
func (p *Puzzle) Contains(pos Position) bool {
	for _, e := range p.entries {
		if e.covers(pos) {
			return true
		}
	}
	return false
}

// WordsStartingAt returns the (at most two) words that start at pos.
func (p *Puzzle) WordsStartingAt(pos Position) []WordStart {
	var out []WordStart
	for i, e := range p.entries {
		if e.Row == pos.Row && e.Col == pos.Col {
			out = append(out, WordStart{WordID: i + 1, Direction: e.Direction})
		}
	}
	return out
}

// Questions renders every clue as "<wordID> \"<clue>\"", one per line, in
// word-id order.
func (p *Puzzle) Questions() string {
	lines := make([]string, len(p.entries))
	for i, e := range p.entries {
		lines[i] = fmt.Sprintf("%d %s", i+1, quote(e.Clue))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
