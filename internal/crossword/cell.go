package crossword

import (
	"fmt"
	"slices"
	"strings"
)

// Cell is the immutable, value-typed state of one square on a match board.
// A Match holds a map of Position to Cell; every mutation replaces the
// value at a position rather than mutating in place, which makes "did this
// change?" a plain equality check and drives the change-notification signal.
//
// Invariant: if letter is blank (' '), neither owner is set and confirmed
// is false. If confirmed, letter is non-blank and at least one owner is set.
type Cell struct {
	gap         bool
	letter      byte // ' ' means blank; otherwise a single uppercase letter
	confirmed   bool
	ownerAcross string
	ownerDown   string
	starts      []WordStart
}

// Gap constructs a cell not covered by any entry.
func Gap() Cell {
	return Cell{gap: true, letter: ' '}
}

// Blank constructs an unguessed cell covered by one or more entries,
// recording the words (if any) that start here.
func Blank(starts []WordStart) Cell {
	cp := append([]WordStart(nil), starts...)
	return Cell{letter: ' ', starts: cp}
}

func (c Cell) IsGap() bool { return c.gap }

// HasGuess reports whether the cell holds a non-blank letter.
func (c Cell) HasGuess() bool { return !c.gap && c.letter != ' ' }

func (c Cell) IsConfirmed() bool { return !c.gap && c.confirmed }

// Owner returns the player controlling this cell in dir, or "" if none.
func (c Cell) Owner(dir Direction) string {
	if dir == Across {
		return c.ownerAcross
	}
	return c.ownerDown
}

// Guess returns the current letter, or ' ' if blank. Undefined on a Gap cell.
func (c Cell) Guess() byte { return c.letter }

// Starts returns the words (if any) that start at this cell.
func (c Cell) Starts() []WordStart {
	return append([]WordStart(nil), c.starts...)
}

// WithGuess returns a new Cell with guess recorded as a guess made by player
// in dir. The cell must not be a Gap; if confirmed, guess must match the
// existing letter.
func (c Cell) WithGuess(guess byte, player string, dir Direction) (Cell, error) {
	if c.gap {
		return Cell{}, fmt.Errorf("crossword: cannot guess on a gap cell")
	}
	if c.confirmed && guess != c.letter {
		return Cell{}, fmt.Errorf("crossword: cannot change a confirmed cell's letter")
	}
	next := c
	next.letter = guess
	if dir == Across {
		next.ownerAcross = player
	} else {
		next.ownerDown = player
	}
	invariant(next.HasGuess(), "WithGuess produced a still-blank cell")
	return next, nil
}

// Confirmed returns a new Cell with its current guess confirmed. The cell
// must already carry a non-blank, owned guess.
func (c Cell) Confirmed() (Cell, error) {
	if c.gap {
		return Cell{}, fmt.Errorf("crossword: cannot confirm a gap cell")
	}
	if c.letter == ' ' {
		return Cell{}, fmt.Errorf("crossword: cannot confirm a blank cell")
	}
	if c.ownerAcross == "" && c.ownerDown == "" {
		return Cell{}, fmt.Errorf("crossword: cannot confirm a cell with no owner")
	}
	next := c
	next.confirmed = true
	invariant(next.IsConfirmed(), "Confirmed produced an unconfirmed cell")
	return next, nil
}

// ClearDirection returns a new Cell with the owner in dir removed. If the
// other direction has no owner either, the letter resets to blank;
// otherwise it is kept. Confirmed is never cleared by this call — callers
// must not invoke it on the direction of a confirmed entry.
func (c Cell) ClearDirection(dir Direction) Cell {
	next := c
	if dir == Across {
		next.ownerAcross = ""
	} else {
		next.ownerDown = ""
	}
	if next.ownerAcross == "" && next.ownerDown == "" {
		next.letter = ' '
	}
	invariant(next.letter != ' ' || (next.ownerAcross == "" && next.ownerDown == ""),
		"a blank cell must have no owner")
	return next
}

// ConsistentWith reports whether guess is compatible with this cell if made
// by player: it matches the current letter, the cell is blank, or neither
// direction's owner is a different player.
func (c Cell) ConsistentWith(guess byte, player string) bool {
	if guess == c.letter || c.letter == ' ' {
		return true
	}
	return (c.ownerAcross == "" || c.ownerAcross == player) &&
		(c.ownerDown == "" || c.ownerDown == player)
}

// Equal reports structural equality, used to detect whether a mutation
// actually changed a cell's value.
func (c Cell) Equal(other Cell) bool {
	if c.gap || other.gap {
		return c.gap == other.gap
	}
	return c.letter == other.letter &&
		c.confirmed == other.confirmed &&
		c.ownerAcross == other.ownerAcross &&
		c.ownerDown == other.ownerDown &&
		slices.Equal(c.starts, other.starts)
}

// Render formats the cell per the SQUARE grammar (spec §6.2), marking
// starts owned by viewer with a leading ">".
func (c Cell) Render(viewer string) string {
	if c.gap {
		return "EMPTY"
	}

	var b strings.Builder
	if c.confirmed {
		b.WriteByte('+')
	}
	if c.letter == ' ' {
		b.WriteByte('_')
	} else {
		b.WriteByte(c.letter)
	}

	for _, s := range c.starts {
		b.WriteByte(' ')
		mine := (s.Direction == Across && c.ownerAcross == viewer) ||
			(s.Direction == Down && c.ownerDown == viewer)
		if mine {
			b.WriteByte('>')
		}
		b.WriteString(s.String())
	}
	return b.String()
}
