package crossword

import (
	"fmt"
	"strings"
)

// Entry is the immutable solution for one word in a puzzle: its answer,
// clue, direction, and starting position. Word id is assigned by Puzzle
// (1-based index into its entry list), not stored here.
type Entry struct {
	Answer    string
	Clue      string
	Direction Direction
	Row       int
	Col       int
	end       int // row (DOWN) or column (ACROSS) of the last letter
}

// NewEntry validates and constructs an Entry. answer is upper-cased.
func NewEntry(answer, clue string, direction Direction, row, col int) (Entry, error) {
	if answer == "" {
		return Entry{}, fmt.Errorf("crossword: entry answer is empty")
	}
	if clue == "" {
		return Entry{}, fmt.Errorf("crossword: entry clue is empty")
	}
	if strings.ContainsAny(answer, " \t\r\n") {
		return Entry{}, fmt.Errorf("crossword: entry answer %q contains whitespace", answer)
	}
	if strings.ContainsAny(clue, "\r\n") {
		return Entry{}, fmt.Errorf("crossword: entry clue contains a newline")
	}
	if row < 0 || col < 0 {
		return Entry{}, fmt.Errorf("crossword: entry row/col must be non-negative")
	}

	answer = strings.ToUpper(answer)
	length := len(answer)
	var end int
	if direction == Across {
		end = col + length - 1
	} else {
		end = row + length - 1
	}

	return Entry{
		Answer:    answer,
		Clue:      clue,
		Direction: direction,
		Row:       row,
		Col:       col,
		end:       end,
	}, nil
}

// End returns the row (DOWN) or column (ACROSS) of the entry's last letter.
func (e Entry) End() int {
	return e.end
}

// Positions returns the cells this entry occupies, in word order.
func (e Entry) Positions() []Position {
	positions := make([]Position, 0, len(e.Answer))
	if e.Direction == Across {
		for c := e.Col; c <= e.end; c++ {
			positions = append(positions, Position{Row: e.Row, Col: c})
		}
	} else {
		for r := e.Row; r <= e.end; r++ {
			positions = append(positions, Position{Row: r, Col: e.Col})
		}
	}
	return positions
}

// covers reports whether pos lies within this entry's positions, without allocating.
func (e Entry) covers(pos Position) bool {
	switch e.Direction {
	case Across:
		return pos.Row == e.Row && pos.Col >= e.Col && pos.Col <= e.end
	default:
		return pos.Col == e.Col && pos.Row >= e.Row && pos.Row <= e.end
	}
}
