package crossword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGapCell(t *testing.T) {
	c := Gap()
	assert.True(t, c.IsGap())
	assert.False(t, c.HasGuess())
	assert.Equal(t, "EMPTY", c.Render("alice"))
}

func TestBlankCellWithGuess(t *testing.T) {
	c := Blank(nil)
	assert.False(t, c.HasGuess())

	c2, err := c.WithGuess('A', "alice", Across)
	require.NoError(t, err)
	assert.True(t, c2.HasGuess())
	assert.Equal(t, byte('A'), c2.Guess())
	assert.Equal(t, "alice", c2.Owner(Across))
	assert.Equal(t, "", c2.Owner(Down))
}

func TestWithGuessRejectsGap(t *testing.T) {
	_, err := Gap().WithGuess('A', "alice", Across)
	assert.Error(t, err)
}

func TestConfirmedCellRejectsDifferentLetter(t *testing.T) {
	c, err := Blank(nil).WithGuess('A', "alice", Across)
	require.NoError(t, err)
	c, err = c.Confirmed()
	require.NoError(t, err)

	_, err = c.WithGuess('B', "bob", Across)
	assert.Error(t, err)

	c2, err := c.WithGuess('A', "bob", Across)
	require.NoError(t, err)
	assert.Equal(t, "bob", c2.Owner(Across))
}

func TestConfirmRequiresOwnedGuess(t *testing.T) {
	_, err := Blank(nil).Confirmed()
	assert.Error(t, err, "cannot confirm a blank cell")

	_, err = Gap().Confirmed()
	assert.Error(t, err, "cannot confirm a gap cell")
}

func TestClearDirectionResetsWhenUnowned(t *testing.T) {
	c, err := Blank(nil).WithGuess('A', "alice", Across)
	require.NoError(t, err)

	cleared := c.ClearDirection(Across)
	assert.False(t, cleared.HasGuess())
	assert.Equal(t, "", cleared.Owner(Across))
}

func TestClearDirectionKeepsLetterWhenOtherDirectionOwned(t *testing.T) {
	c, err := Blank(nil).WithGuess('A', "alice", Across)
	require.NoError(t, err)
	c, err = c.WithGuess('A', "bob", Down)
	require.NoError(t, err)

	cleared := c.ClearDirection(Across)
	assert.True(t, cleared.HasGuess())
	assert.Equal(t, "", cleared.Owner(Across))
	assert.Equal(t, "bob", cleared.Owner(Down))
}

func TestConsistentWith(t *testing.T) {
	blank := Blank(nil)
	assert.True(t, blank.ConsistentWith('A', "alice"))

	owned, err := blank.WithGuess('A', "alice", Across)
	require.NoError(t, err)

	assert.True(t, owned.ConsistentWith('A', "bob"))
	assert.False(t, owned.ConsistentWith('B', "bob"))
	assert.True(t, owned.ConsistentWith('B', "alice"))
}

func TestCellEqual(t *testing.T) {
	a, err := Blank(nil).WithGuess('A', "alice", Across)
	require.NoError(t, err)
	b, err := Blank(nil).WithGuess('A', "alice", Across)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	c, err := b.WithGuess('A', "alice", Down)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	assert.True(t, Gap().Equal(Gap()))
	assert.False(t, Gap().Equal(Blank(nil)))
}

func TestCellRenderMarksOwnedStart(t *testing.T) {
	starts := []WordStart{{WordID: 1, Direction: Across}, {WordID: 2, Direction: Down}}
	c := Blank(starts)
	c, err := c.WithGuess('A', "alice", Across)
	require.NoError(t, err)

	assert.Equal(t, "A >1 ACROSS 2 DOWN", c.Render("alice"))
	assert.Equal(t, "A 1 ACROSS 2 DOWN", c.Render("bob"))

	confirmed, err := c.Confirmed()
	require.NoError(t, err)
	assert.Equal(t, "+A >1 ACROSS 2 DOWN", confirmed.Render("alice"))
}
