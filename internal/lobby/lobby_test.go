package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossword-extravaganza/server/internal/crossword"
)

func testPuzzle(t *testing.T, id string) *crossword.Puzzle {
	t.Helper()
	e, err := crossword.NewEntry("cat", "Feline", crossword.Across, 0, 0)
	require.NoError(t, err)
	p, err := crossword.NewPuzzle(id, "Name "+id, "desc", []crossword.Entry{e})
	require.NoError(t, err)
	return p
}

func TestAddUser(t *testing.T) {
	l := New()
	assert.Equal(t, "Success", l.AddUser("alice"))
	assert.Equal(t, "User ID alice already in use", l.AddUser("alice"))
}

func TestAllPuzzles(t *testing.T) {
	l := New()
	l.AddPuzzle(testPuzzle(t, "p1"))
	l.AddPuzzle(testPuzzle(t, "p2"))
	assert.Equal(t, `p1 "Name p1" "desc"`+"\n"+`p2 "Name p2" "desc"`, l.AllPuzzles())
}

func TestNewMatchAndAvailableMatches(t *testing.T) {
	l := New()
	l.AddPuzzle(testPuzzle(t, "p1"))
	l.AddUser("alice")

	require.NoError(t, l.NewMatch("m1", "First match", "p1", "alice"))
	assert.Equal(t, `m1 "First match"`, l.AvailableMatches())

	_, err := l.GetMatch("m1")
	require.NoError(t, err)
}

func TestNewMatchRejectsDuplicateID(t *testing.T) {
	l := New()
	l.AddPuzzle(testPuzzle(t, "p1"))
	require.NoError(t, l.NewMatch("m1", "d", "p1", "alice"))
	assert.Error(t, l.NewMatch("m1", "d2", "p1", "bob"))
}

func TestNewMatchRejectsUnknownPuzzle(t *testing.T) {
	l := New()
	assert.Error(t, l.NewMatch("m1", "d", "nope", "alice"))
}

func TestPlayMatchRemovesFromAvailable(t *testing.T) {
	l := New()
	l.AddPuzzle(testPuzzle(t, "p1"))
	require.NoError(t, l.NewMatch("m1", "d", "p1", "alice"))

	notified := 0
	l.AddMatchListener(func() { notified++ })

	m, err := l.PlayMatch("bob", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, m.Players())
	assert.Empty(t, l.AvailableMatches())
	assert.Equal(t, 1, notified)
}

func TestExitMatchForfeitWhileWaitingNotifies(t *testing.T) {
	l := New()
	l.AddPuzzle(testPuzzle(t, "p1"))
	require.NoError(t, l.NewMatch("m1", "d", "p1", "alice"))

	notified := 0
	l.AddMatchListener(func() { notified++ })

	require.NoError(t, l.ExitMatch("m1", "alice"))
	assert.Empty(t, l.AvailableMatches())
	assert.Equal(t, 1, notified)

	m, err := l.GetMatch("m1")
	require.NoError(t, err)
	assert.True(t, m.IsFinalized())
}

func TestQuitUserFinalizesAbandonedMatch(t *testing.T) {
	l := New()
	l.AddPuzzle(testPuzzle(t, "p1"))
	l.AddUser("alice")
	l.AddUser("bob")
	require.NoError(t, l.NewMatch("m1", "d", "p1", "alice"))
	_, err := l.PlayMatch("bob", "m1")
	require.NoError(t, err)

	l.QuitUser("alice")
	m, err := l.GetMatch("m1")
	require.NoError(t, err)
	assert.False(t, m.IsFinalized(), "match survives while bob is still active")

	l.QuitUser("bob")
	assert.True(t, m.IsFinalized(), "match finalizes once every seated player has departed")
}
