package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestAddUser(t *testing.T) {
	r, err := ParseRequest("add_user gzlin")
	require.NoError(t, err)
	assert.Equal(t, AddUser, r.Type)
	assert.Equal(t, "gzlin", r.UserID)
}

func TestParseRequestCaseInsensitiveCommand(t *testing.T) {
	r, err := ParseRequest("GET_PUZZLES")
	require.NoError(t, err)
	assert.Equal(t, GetPuzzles, r.Type)

	r, err = ParseRequest("get_matches")
	require.NoError(t, err)
	assert.Equal(t, GetMatches, r.Type)
}

func TestParseRequestNewMatchExtractsQuotedDescription(t *testing.T) {
	r, err := ParseRequest(`NEW_MATCH gzlin m1 minimal "A quick game, with a comma"`)
	require.NoError(t, err)
	assert.Equal(t, NewMatch, r.Type)
	assert.Equal(t, "gzlin", r.UserID)
	assert.Equal(t, "m1", r.MatchID)
	assert.Equal(t, "minimal", r.PuzzleID)
	assert.Equal(t, "A quick game, with a comma", r.Description)
}

func TestParseRequestNewMatchRequiresQuotes(t *testing.T) {
	_, err := ParseRequest("NEW_MATCH gzlin m1 minimal unquoted")
	assert.Error(t, err)
}

func TestParseRequestPlayMatch(t *testing.T) {
	r, err := ParseRequest("PLAY_MATCH lconboy m1")
	require.NoError(t, err)
	assert.Equal(t, PlayMatch, r.Type)
	assert.Equal(t, "lconboy", r.UserID)
	assert.Equal(t, "m1", r.MatchID)
}

func TestParseRequestTryAndChallenge(t *testing.T) {
	r, err := ParseRequest("TRY gzlin m1 3 CAT")
	require.NoError(t, err)
	assert.Equal(t, Try, r.Type)
	assert.Equal(t, 3, r.WordID)
	assert.Equal(t, "CAT", r.Word)

	r, err = ParseRequest("challenge gzlin m1 3 COP")
	require.NoError(t, err)
	assert.Equal(t, Challenge, r.Type)
}

func TestParseRequestTryRejectsNonIntegerWordID(t *testing.T) {
	_, err := ParseRequest("TRY gzlin m1 x CAT")
	assert.Error(t, err)
}

func TestParseRequestWrongArgCount(t *testing.T) {
	_, err := ParseRequest("ADD_USER")
	assert.Error(t, err)

	_, err = ParseRequest("GET_PUZZLES extra")
	assert.Error(t, err)
}

func TestParseRequestEmptyLine(t *testing.T) {
	_, err := ParseRequest("")
	assert.Error(t, err)

	_, err = ParseRequest("   ")
	assert.Error(t, err)
}

func TestParseRequestUnknownType(t *testing.T) {
	_, err := ParseRequest("FLY_AWAY gzlin")
	assert.Error(t, err)
}

func TestParseRequestQuit(t *testing.T) {
	r, err := ParseRequest("QUIT gzlin")
	require.NoError(t, err)
	assert.Equal(t, Quit, r.Type)
	assert.Equal(t, "gzlin", r.UserID)
}

func TestParseRequestExitMatch(t *testing.T) {
	r, err := ParseRequest("EXIT_MATCH gzlin m1")
	require.NoError(t, err)
	assert.Equal(t, ExitMatch, r.Type)
	assert.Equal(t, "gzlin", r.UserID)
	assert.Equal(t, "m1", r.MatchID)
}

func TestEncodeFrameSingleLine(t *testing.T) {
	assert.Equal(t, "ADD_USER 1\nSuccess", EncodeFrame(AddUser, "Success"))
}

func TestEncodeFrameMultiLine(t *testing.T) {
	content := "m1 \"First\"\nm2 \"Second\""
	assert.Equal(t, "AVAILABLE_MATCHES 2\nm1 \"First\"\nm2 \"Second\"", EncodeFrame(AvailableMatches, content))
}

func TestEncodeFrameEmptyContent(t *testing.T) {
	assert.Equal(t, "GET_MATCHES 0\n", EncodeFrame(GetMatches, ""))
}
