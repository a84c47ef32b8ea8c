// Package lobby tracks the puzzles available to play, the set of
// connected users, and the set of live matches, fanning out a
// change notification whenever the "matches waiting for a second
// player" projection changes.
package lobby

import (
	"fmt"
	"strings"
	"sync"

	"github.com/crossword-extravaganza/server/internal/crossword"
)

// Lobby guards all of its state with its own lock. Methods that touch a
// Match or fan out release the lock first: it never calls into a Match while
// holding that lock, and it never invokes a listener callback while holding it,
// so a callback that re-enters the Lobby (or a Match) cannot deadlock.
type Lobby struct {
	mu sync.Mutex

	puzzles     map[string]*crossword.Puzzle
	puzzleOrder []string

	users map[string]bool

	matches     map[string]*crossword.Match
	matchOrder  []string

	listeners []func()
}

// New returns an empty Lobby.
func New() *Lobby {
	return &Lobby{
		puzzles: make(map[string]*crossword.Puzzle),
		users:   make(map[string]bool),
		matches: make(map[string]*crossword.Match),
	}
}

// AddPuzzle registers a puzzle as available to play.
func (l *Lobby) AddPuzzle(p *crossword.Puzzle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.puzzles[p.ID()]; !exists {
		l.puzzleOrder = append(l.puzzleOrder, p.ID())
	}
	l.puzzles[p.ID()] = p
}

// AddUser admits userID, unless it is already in use.
func (l *Lobby) AddUser(userID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.users[userID] {
		return fmt.Sprintf("User ID %s already in use", userID)
	}
	l.users[userID] = true
	return "Success"
}

// AddMatchListener registers cb to be called whenever the set of matches
// waiting for a second player may have changed.
func (l *Lobby) AddMatchListener(cb func()) {
	l.mu.Lock()
	l.listeners = append(l.listeners, cb)
	l.mu.Unlock()
}

func (l *Lobby) notify() {
	l.mu.Lock()
	cbs := append([]func(){}, l.listeners...)
	l.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (l *Lobby) getPuzzleLocked(puzzleID string) (*crossword.Puzzle, error) {
	p, ok := l.puzzles[puzzleID]
	if !ok {
		return nil, fmt.Errorf("lobby: puzzle id %s is not available", puzzleID)
	}
	return p, nil
}

func (l *Lobby) getMatchLocked(matchID string) (*crossword.Match, error) {
	m, ok := l.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("lobby: match id %s is not available", matchID)
	}
	return m, nil
}

// GetMatch returns the live match with the given id.
func (l *Lobby) GetMatch(matchID string) (*crossword.Match, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getMatchLocked(matchID)
}

// GetPuzzle returns the puzzle with the given id.
func (l *Lobby) GetPuzzle(puzzleID string) (*crossword.Puzzle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getPuzzleLocked(puzzleID)
}

// NewMatch creates a new match, seating userID as its first player.
func (l *Lobby) NewMatch(matchID, description, puzzleID, userID string) error {
	l.mu.Lock()
	if _, exists := l.matches[matchID]; exists {
		l.mu.Unlock()
		return fmt.Errorf("lobby: match id %s already in system", matchID)
	}
	puzzle, err := l.getPuzzleLocked(puzzleID)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	m, err := crossword.NewMatch(matchID, description, puzzle, userID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if _, exists := l.matches[matchID]; exists {
		l.mu.Unlock()
		return fmt.Errorf("lobby: match id %s already in system", matchID)
	}
	l.matches[matchID] = m
	l.matchOrder = append(l.matchOrder, matchID)
	l.mu.Unlock()

	l.notify()
	return nil
}

// PlayMatch seats userID as the second player of matchID.
func (l *Lobby) PlayMatch(userID, matchID string) (*crossword.Match, error) {
	m, err := l.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if err := m.AddPlayer(userID); err != nil {
		return nil, err
	}

	l.notify()
	return m, nil
}

// ExitMatch forfeits matchID on behalf of player. If the match was still
// waiting for a second player, the lobby's available-matches projection
// changed, so listeners are notified.
func (l *Lobby) ExitMatch(matchID, player string) error {
	m, err := l.GetMatch(matchID)
	if err != nil {
		return err
	}
	wasWaiting := len(m.Players()) == 1
	m.Finalize(player)

	if wasWaiting {
		l.notify()
	}
	return nil
}

// QuitUser removes userID from the active set, finalizing (as a forfeit)
// any match whose every seated player has now departed.
func (l *Lobby) QuitUser(userID string) {
	l.mu.Lock()
	delete(l.users, userID)
	matches := make([]*crossword.Match, 0, len(l.matchOrder))
	for _, id := range l.matchOrder {
		matches = append(matches, l.matches[id])
	}
	l.mu.Unlock()

	for _, m := range matches {
		if m.IsFinalized() {
			continue
		}
		players := m.Players()
		allGone := true
		l.mu.Lock()
		for _, p := range players {
			if l.users[p] {
				allGone = false
				break
			}
		}
		l.mu.Unlock()
		if allGone {
			m.Finalize(userID)
		}
	}
}

// AvailableMatches renders one line per match waiting for a second player,
// per GET_MATCHES/AVAILABLE_MATCHES content.
func (l *Lobby) AvailableMatches() string {
	l.mu.Lock()
	ids := append([]string{}, l.matchOrder...)
	matches := make([]*crossword.Match, len(ids))
	for i, id := range ids {
		matches[i] = l.matches[id]
	}
	l.mu.Unlock()

	var lines []string
	for i, m := range matches {
		if m.IsFinalized() || len(m.Players()) == 2 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", ids[i], quoteDescription(m.Description())))
	}
	return strings.Join(lines, "\n")
}

// AllPuzzles renders one line per loaded puzzle, per GET_PUZZLES content.
func (l *Lobby) AllPuzzles() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, len(l.puzzleOrder))
	for i, id := range l.puzzleOrder {
		p := l.puzzles[id]
		lines[i] = fmt.Sprintf("%s %s %s", p.ID(), quoteDescription(p.Name()), quoteDescription(p.Description()))
	}
	return strings.Join(lines, "\n")
}

func quoteDescription(s string) string {
	return `"` + s + `"`
}
