package crossword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("cat", "Feline", Across, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "CAT", e.Answer)
	assert.Equal(t, 2, e.End())
	assert.Equal(t, []Position{{0, 0}, {0, 1}, {0, 2}}, e.Positions())
}

func TestNewEntryDown(t *testing.T) {
	e, err := NewEntry("dog", "Canine", Down, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, e.End())
	assert.Equal(t, []Position{{1, 2}, {2, 2}, {3, 2}}, e.Positions())
}

func TestNewEntryValidation(t *testing.T) {
	cases := []struct {
		name, answer, clue string
		row, col           int
	}{
		{"empty answer", "", "clue", 0, 0},
		{"empty clue", "cat", "", 0, 0},
		{"whitespace in answer", "ca t", "clue", 0, 0},
		{"newline in clue", "cat", "line1\nline2", 0, 0},
		{"negative row", "cat", "clue", -1, 0},
		{"negative col", "cat", "clue", 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEntry(tc.answer, tc.clue, Across, tc.row, tc.col)
			assert.Error(t, err)
		})
	}
}

func TestEntryCovers(t *testing.T) {
	e, err := NewEntry("cat", "Feline", Across, 0, 0)
	require.NoError(t, err)
	assert.True(t, e.covers(Position{0, 1}))
	assert.False(t, e.covers(Position{1, 1}))
	assert.False(t, e.covers(Position{0, 3}))
}
