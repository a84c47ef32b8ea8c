// Package protocol implements the line-oriented wire format (spec section
// 6.2): framed responses, client request parsing, and the HOLD/DISPOSE
// markers used internally to order pushes against replies.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// MessageType is the closed set of request/response/internal-marker tags.
type MessageType string

const (
	AddUser          MessageType = "ADD_USER"
	GetPuzzles       MessageType = "GET_PUZZLES"
	GetMatches       MessageType = "GET_MATCHES"
	NewMatch         MessageType = "NEW_MATCH"
	PlayMatch        MessageType = "PLAY_MATCH"
	ExitMatch        MessageType = "EXIT_MATCH"
	Try              MessageType = "TRY"
	Challenge        MessageType = "CHALLENGE"
	Quit             MessageType = "QUIT"
	BoardChanged     MessageType = "BOARD_CHANGED"
	GameOver         MessageType = "GAME_OVER"
	AvailableMatches MessageType = "AVAILABLE_MATCHES"
	InvalidRequest   MessageType = "INVALID_REQUEST"

	// Hold and Dispose are internal session-queue markers; never written to
	// a socket (spec 4.6). Not valid as a client request or wire reply.
	Hold    MessageType = "HOLD"
	Dispose MessageType = "DISPOSE"
)

const (
	Success = "Success"
	Fail    = "Fail"
)

// Request is a parsed client command line.
type Request struct {
	Type        MessageType
	UserID      string
	MatchID     string
	PuzzleID    string
	Description string
	WordID      int
	Word        string
	Raw         string
}

// ParseRequest tokenizes a single input line per the grammar in spec 6.2.
// The command name is matched case-insensitively; everything else is
// whitespace-separated except NEW_MATCH's quoted description.
func ParseRequest(line string) (Request, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Request{}, fmt.Errorf("protocol: empty request")
	}
	t := MessageType(strings.ToUpper(tokens[0]))

	switch t {
	case AddUser:
		if len(tokens) != 2 {
			return Request{}, fmt.Errorf("protocol: ADD_USER requires exactly one argument")
		}
		return Request{Type: t, UserID: tokens[1], Raw: line}, nil

	case GetPuzzles, GetMatches:
		if len(tokens) != 1 {
			return Request{}, fmt.Errorf("protocol: %s takes no arguments", t)
		}
		return Request{Type: t, Raw: line}, nil

	case NewMatch:
		if len(tokens) < 4 {
			return Request{}, fmt.Errorf("protocol: NEW_MATCH requires userId matchId puzzleId \"desc\"")
		}
		begin := strings.IndexByte(line, '"')
		end := strings.LastIndexByte(line, '"')
		if begin < 0 || end <= begin {
			return Request{}, fmt.Errorf("protocol: NEW_MATCH description must be double-quoted")
		}
		return Request{
			Type: t, UserID: tokens[1], MatchID: tokens[2], PuzzleID: tokens[3],
			Description: line[begin+1 : end], Raw: line,
		}, nil

	case PlayMatch, ExitMatch:
		if len(tokens) != 3 {
			return Request{}, fmt.Errorf("protocol: %s requires userId matchId", t)
		}
		return Request{Type: t, UserID: tokens[1], MatchID: tokens[2], Raw: line}, nil

	case Try, Challenge:
		if len(tokens) != 5 {
			return Request{}, fmt.Errorf("protocol: %s requires userId matchId wordId word", t)
		}
		wordID, err := strconv.Atoi(tokens[3])
		if err != nil {
			return Request{}, fmt.Errorf("protocol: %s word id must be an integer: %w", t, err)
		}
		return Request{Type: t, UserID: tokens[1], MatchID: tokens[2], WordID: wordID, Word: tokens[4], Raw: line}, nil

	case Quit:
		if len(tokens) != 2 {
			return Request{}, fmt.Errorf("protocol: QUIT requires exactly one argument")
		}
		return Request{Type: t, UserID: tokens[1], Raw: line}, nil

	default:
		return Request{}, fmt.Errorf("protocol: unrecognized request type %q", tokens[0])
	}
}

// EncodeFrame renders a response per the framing grammar: "<TYPE> <N>\n<N
// lines of content>". N is the number of lines in content, 0 for empty
// content. When N > 0 the caller writes the newline ending the last content
// line; an N=0 frame already ends with its header's newline.
func EncodeFrame(t MessageType, content string) string {
	n := 0
	if content != "" {
		n = strings.Count(content, "\n") + 1
	}
	return fmt.Sprintf("%s %d\n%s", t, n, content)
}
