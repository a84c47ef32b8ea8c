// Package session drives one client connection: a reader goroutine that
// parses and dispatches requests, and a writer goroutine that serializes
// replies and pushes onto the socket, implementing the HOLD/DISPOSE
// ordering discipline described in spec section 4.6.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crossword-extravaganza/server/internal/lobby"
	"github.com/crossword-extravaganza/server/internal/protocol"
)

const outboxBuffer = 32

// outboundKind distinguishes a real wire frame from the internal
// HOLD/DISPOSE/close markers that never reach the socket.
type outboundKind int

const (
	kindFrame outboundKind = iota
	kindHold
	kindDispose
	kindClose
)

type outboundItem struct {
	kind    outboundKind
	msgType protocol.MessageType
	frame   string
}

// Session owns one TCP connection for its lifetime. A successful ADD_USER
// binds a user to it; other requests carry their own user id and are
// dispatched whether or not a user is bound.
type Session struct {
	conn   net.Conn
	lobby  *lobby.Lobby
	log    *zap.Logger
	connID string

	userID  string
	outbox  chan outboundItem
	limiter *rateLimiter
}

// New wraps conn in a Session bound to lobby l. log should already be
// tagged with any caller-level fields; New adds a per-connection id.
func New(conn net.Conn, l *lobby.Lobby, log *zap.Logger) *Session {
	connID := uuid.NewString()
	return &Session{
		conn:    conn,
		lobby:   l,
		log:     log.With(zap.String("conn_id", connID), zap.String("remote", conn.RemoteAddr().String())),
		connID:  connID,
		outbox:  make(chan outboundItem, outboxBuffer),
		limiter: newRateLimiter(20, 20),
	}
}

// Serve runs the session to completion: it blocks until the connection
// closes or either goroutine errors, then cleans up the bound user (if
// any) from the lobby.
func (s *Session) Serve(ctx context.Context) {
	defer s.conn.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.writeLoop(ctx) })

	if err := g.Wait(); err != nil {
		s.log.Debug("session ended", zap.Error(err))
	} else {
		s.log.Debug("session ended")
	}

	if s.userID != "" {
		s.lobby.QuitUser(s.userID)
	}
}

func (s *Session) readLoop(ctx context.Context) error {
	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !s.limiter.allow() {
			s.enqueueFrame(protocol.InvalidRequest, "Rate limit exceeded")
			continue
		}
		if err := s.handleLine(line); err != nil {
			if errors.Is(err, errQuit) {
				s.enqueueClose()
				return nil
			}
			s.log.Debug("invalid request", zap.String("line", line), zap.Error(err))
			s.enqueueFrame(protocol.InvalidRequest, line)
		}
	}
	s.enqueueClose()
	return scanner.Err()
}

var errQuit = errors.New("session: client quit")

func (s *Session) handleLine(line string) error {
	req, err := protocol.ParseRequest(line)
	if err != nil {
		return err
	}

	switch req.Type {
	case protocol.AddUser:
		return s.handleAddUser(req)
	case protocol.GetPuzzles:
		s.enqueueFrame(protocol.GetPuzzles, s.lobby.AllPuzzles())
		return nil
	case protocol.GetMatches:
		s.enqueueFrame(protocol.GetMatches, s.lobby.AvailableMatches())
		return nil
	case protocol.NewMatch:
		return s.handleNewMatch(req)
	case protocol.PlayMatch:
		return s.handlePlayMatch(req)
	case protocol.ExitMatch:
		s.outbox <- outboundItem{kind: kindDispose}
		return s.lobby.ExitMatch(req.MatchID, req.UserID)
	case protocol.Try:
		return s.handleGuessLike(req, true)
	case protocol.Challenge:
		return s.handleGuessLike(req, false)
	case protocol.Quit:
		return errQuit
	default:
		return fmt.Errorf("session: unhandled request type %s", req.Type)
	}
}

func (s *Session) handleAddUser(req protocol.Request) error {
	result := s.lobby.AddUser(req.UserID)
	if result == protocol.Success {
		s.userID = req.UserID
		s.lobby.AddMatchListener(func() {
			s.pushFrame(outboundItem{
				kind: kindFrame, msgType: protocol.AvailableMatches,
				frame: protocol.EncodeFrame(protocol.AvailableMatches, s.lobby.AvailableMatches()),
			})
		})
	}
	s.enqueueFrame(protocol.AddUser, result)
	return nil
}

func (s *Session) handleNewMatch(req protocol.Request) error {
	s.outbox <- outboundItem{kind: kindDispose}
	err := s.lobby.NewMatch(req.MatchID, req.Description, req.PuzzleID, req.UserID)
	if err != nil {
		s.enqueueFrame(protocol.NewMatch, protocol.Fail+" "+err.Error())
		return nil
	}
	s.watchMatch(req.MatchID)
	s.enqueueFrame(protocol.NewMatch, protocol.Success)
	return nil
}

func (s *Session) handlePlayMatch(req protocol.Request) error {
	s.outbox <- outboundItem{kind: kindDispose}
	m, err := s.lobby.PlayMatch(req.UserID, req.MatchID)
	if err != nil {
		s.enqueueFrame(protocol.PlayMatch, protocol.Fail+" "+err.Error())
		return nil
	}
	s.watchMatch(req.MatchID)
	s.enqueueFrame(protocol.BoardChanged, m.View(req.UserID))
	return nil
}

// watchMatch registers a per-session listener that pushes the match's
// current view (from this session's own player's perspective) whenever the
// board changes, switching to GAME_OVER once the match finishes.
func (s *Session) watchMatch(matchID string) {
	m, err := s.lobby.GetMatch(matchID)
	if err != nil {
		return
	}
	viewer := s.userID
	m.AddListener(func() {
		t := protocol.BoardChanged
		if m.IsFinished() {
			t = protocol.GameOver
		}
		s.pushFrame(outboundItem{kind: kindFrame, msgType: t, frame: protocol.EncodeFrame(t, m.View(viewer))})
	})
}

func (s *Session) handleGuessLike(req protocol.Request, isTry bool) error {
	m, err := s.lobby.GetMatch(req.MatchID)
	if err != nil {
		return err
	}

	s.outbox <- outboundItem{kind: kindHold}

	replyType := protocol.Try
	if !isTry {
		replyType = protocol.Challenge
	}

	var result string
	if isTry {
		result, err = m.TryGuess(req.UserID, req.WordID, req.Word)
	} else {
		result, err = m.Challenge(req.UserID, req.WordID, req.Word)
	}
	if err != nil {
		return err
	}
	s.enqueueFrame(replyType, result)
	return nil
}

func (s *Session) enqueueFrame(t protocol.MessageType, content string) {
	s.outbox <- outboundItem{kind: kindFrame, msgType: t, frame: protocol.EncodeFrame(t, content)}
}

// pushFrame is used by listener callbacks, which may run on another
// session's goroutine (the match/lobby they react to is shared). It drops
// the push rather than block a stranger's goroutine against this session's
// own slow reader, mirroring the non-blocking fan-out the teacher used for
// its SSE broadcaster.
func (s *Session) pushFrame(item outboundItem) {
	select {
	case s.outbox <- item:
	default:
		s.log.Warn("dropped push, session outbox full", zap.String("type", string(item.msgType)))
	}
}

func (s *Session) enqueueClose() {
	s.outbox <- outboundItem{kind: kindClose}
}

// writeLoop drains the outbox in order, implementing the HOLD/DISPOSE
// discipline: a HOLD buffers the next BOARD_CHANGED/GAME_OVER frame until
// the reply that follows it is written, then flushes the buffered push. A
// DISPOSE suppresses the next AVAILABLE_MATCHES push, cleared early if a
// GET_MATCHES/GET_PUZZLES reply goes out first.
func (s *Session) writeLoop(ctx context.Context) error {
	w := bufio.NewWriter(s.conn)
	// Closing the connection on any exit also unblocks the reader's socket read.
	defer s.conn.Close()
	defer w.Flush()

	holding := false
	var held *outboundItem
	suppressAvailable := false

	for item := range s.outbox {
		switch item.kind {
		case kindHold:
			holding = true
			held = nil

		case kindDispose:
			suppressAvailable = true

		case kindClose:
			err := w.Flush()
			s.conn.Close()
			return err

		case kindFrame:
			if item.msgType == protocol.GetMatches || item.msgType == protocol.GetPuzzles {
				suppressAvailable = false
			}
			if item.msgType == protocol.AvailableMatches && suppressAvailable {
				suppressAvailable = false
				continue
			}
			if holding && (item.msgType == protocol.BoardChanged || item.msgType == protocol.GameOver) {
				frame := item
				held = &frame
				continue
			}
			if err := writeFrame(w, item.frame); err != nil {
				return err
			}
			if holding && item.msgType != protocol.AvailableMatches {
				holding = false
				if held != nil {
					if err := writeFrame(w, held.frame); err != nil {
						return err
					}
					held = nil
				}
			}
		}
	}
	return nil
}

func writeFrame(w *bufio.Writer, frame string) error {
	if _, err := w.WriteString(frame); err != nil {
		return err
	}
	// A frame with N=0 already ends with its header's newline.
	if header, _, _ := strings.Cut(frame, "\n"); !strings.HasSuffix(header, " 0") {
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
