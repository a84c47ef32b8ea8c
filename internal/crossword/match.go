package crossword

import (
	"fmt"
	"strings"
	"sync"
)

// Feedback strings returned by TryGuess and Challenge. These are normal
// protocol replies, not errors.
const (
	ValidGuess                    = "Valid guess"
	InvalidGuessLength             = "Invalid guess, wrong word length"
	InvalidGuessAllSame            = "Invalid guess, same as existing guess"
	InvalidGuessInconsistent       = "Invalid guess, inconsistent with current board"
	ChallengeSuccess               = "Successful challenge!"
	ChallengeFailedAlreadyCorrect  = "Failed challenge, target word was already correct"
	ChallengeFailedBothIncorrect   = "Failed challenge, target word and your guess both incorrect"
	InvalidChallengeLength         = "Invalid challenge, wrong length"
	InvalidChallengeNoGuess        = "Invalid challenge, not all squares have guesses"
	InvalidChallengeYours          = "Invalid challenge, you control this word"
	InvalidChallengeAllConfirmed   = "Invalid challenge, all spaces already confirmed"
	InvalidChallengeSameAsExisting = "Invalid challenge, same as existing word"
)

const challengeSuccessScore = 2

// Match is the mutable, thread-safe board for a 1-or-2-player game on a
// Puzzle. All exported methods take the Match's own lock for their
// duration (monitor pattern); listener callbacks are invoked outside the
// lock so they may safely call back into the Match (e.g. IsFinished).
type Match struct {
	mu          sync.Mutex
	id          string
	description string
	puzzle      *Puzzle
	rows, cols  int
	players     []string
	scores      map[string]int
	cells       map[Position]Cell
	finalized   bool
	listeners   []func()
}

// NewMatch creates a new match on puzzle, seating player1 in the first slot.
func NewMatch(id, description string, puzzle *Puzzle, player1 string) (*Match, error) {
	if id == "" || strings.ContainsAny(id, " \t\r\n") {
		return nil, fmt.Errorf("crossword: match id must be nonempty and whitespace-free")
	}
	if description == "" {
		return nil, fmt.Errorf("crossword: match description is empty")
	}

	rows, cols := puzzle.BoardSize()
	cells := make(map[Position]Cell, rows*cols)
	for _, pos := range allPositions(rows, cols) {
		if puzzle.Contains(pos) {
			cells[pos] = Blank(puzzle.WordsStartingAt(pos))
		} else {
			cells[pos] = Gap()
		}
	}

	return &Match{
		id:          id,
		description: description,
		puzzle:      puzzle,
		rows:        rows,
		cols:        cols,
		players:     []string{player1},
		scores:      map[string]int{player1: 0},
		cells:       cells,
	}, nil
}

func (m *Match) ID() string          { return m.id }
func (m *Match) Description() string { return m.description }

// Players returns a defensive copy of the seated players, in seat order.
func (m *Match) Players() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.players...)
}

// IsFinalized reports whether the match has already ended.
func (m *Match) IsFinalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized
}

// AddListener registers cb to be called after any change to the board.
func (m *Match) AddListener(cb func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, cb)
	m.mu.Unlock()
}

// notify copies the listener list under lock, then invokes every callback
// outside the lock so callbacks may safely re-enter the Match.
func (m *Match) notify() {
	m.mu.Lock()
	cbs := append([]func(){}, m.listeners...)
	m.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// AddPlayer seats player2 in an existing one-player match.
func (m *Match) AddPlayer(name string) error {
	m.mu.Lock()
	if m.finalized {
		m.mu.Unlock()
		return fmt.Errorf("crossword: match %s already finalized", m.id)
	}
	if len(m.players) != 1 {
		m.mu.Unlock()
		return fmt.Errorf("crossword: match %s already has two players", m.id)
	}
	for _, p := range m.players {
		if p == name {
			m.mu.Unlock()
			return fmt.Errorf("crossword: player %s already in match %s", name, m.id)
		}
	}
	m.players = append(m.players, name)
	m.scores[name] = 0
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *Match) entry(wordID int) (Entry, error) {
	entries := m.puzzle.entries
	idx := wordID - 1
	if idx < 0 || idx >= len(entries) {
		return Entry{}, fmt.Errorf("crossword: word id %d not in puzzle", wordID)
	}
	return entries[idx], nil
}

func validateSeated(players []string, player string) error {
	for _, p := range players {
		if p == player {
			return nil
		}
	}
	return fmt.Errorf("crossword: player %s not seated in this match", player)
}

// TryGuess attempts to place guess in the word identified by wordID on
// behalf of player. See spec §4.3 for the full rule set.
func (m *Match) TryGuess(player string, wordID int, rawGuess string) (string, error) {
	if strings.ContainsAny(rawGuess, " \t\r\n") {
		return "", fmt.Errorf("crossword: guess contains whitespace")
	}
	guess := strings.ToUpper(rawGuess)

	m.mu.Lock()

	if m.finalized {
		m.mu.Unlock()
		return "", fmt.Errorf("crossword: match %s already finalized", m.id)
	}
	if len(m.players) != 2 {
		m.mu.Unlock()
		return "", fmt.Errorf("crossword: match %s does not have two seated players", m.id)
	}
	if err := validateSeated(m.players, player); err != nil {
		m.mu.Unlock()
		return "", err
	}
	entry, err := m.entry(wordID)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	if len(entry.Answer) != len(guess) {
		m.mu.Unlock()
		return InvalidGuessLength, nil
	}

	positions := entry.Positions()
	var toClear []Entry
	allSame := true
	for i, pos := range positions {
		current := m.cells[pos]
		letter := guess[i]
		allSame = allSame && letter == current.Guess()

		if letter == current.Guess() || !current.HasGuess() {
			continue
		}
		if current.IsConfirmed() {
			m.mu.Unlock()
			return InvalidGuessInconsistent, nil
		}
		if !current.ConsistentWith(letter, player) {
			m.mu.Unlock()
			return InvalidGuessInconsistent, nil
		}
		// Legal, but crossing entries through this cell must be cleared.
		for _, other := range m.puzzle.entries {
			if !sameEntry(other, entry) && other.covers(pos) {
				toClear = append(toClear, other)
			}
		}
	}

	if allSame {
		m.mu.Unlock()
		return InvalidGuessAllSame, nil
	}

	boardChanged := false
	for i, pos := range positions {
		current := m.cells[pos]
		updated, err := current.WithGuess(guess[i], player, entry.Direction)
		if err != nil {
			m.mu.Unlock()
			return "", err
		}
		if !updated.Equal(current) {
			boardChanged = true
		}
		m.cells[pos] = updated
	}
	if m.clearEntries(toClear) {
		boardChanged = true
	}
	m.mu.Unlock()

	if boardChanged {
		m.notify()
	}
	return ValidGuess, nil
}

// Challenge attempts to challenge the entry identified by wordID on behalf
// of player. See spec §4.4 for the full rule set.
func (m *Match) Challenge(player string, wordID int, rawGuess string) (string, error) {
	if strings.ContainsAny(rawGuess, " \t\r\n") {
		return "", fmt.Errorf("crossword: guess contains whitespace")
	}
	guess := strings.ToUpper(rawGuess)

	m.mu.Lock()

	if m.finalized {
		m.mu.Unlock()
		return "", fmt.Errorf("crossword: match %s already finalized", m.id)
	}
	if len(m.players) != 2 {
		m.mu.Unlock()
		return "", fmt.Errorf("crossword: match %s does not have two seated players", m.id)
	}
	if err := validateSeated(m.players, player); err != nil {
		m.mu.Unlock()
		return "", err
	}
	entry, err := m.entry(wordID)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	if len(entry.Answer) != len(guess) {
		m.mu.Unlock()
		return InvalidChallengeLength, nil
	}

	positions := entry.Positions()
	allConfirmed, allSame := true, true
	for i, pos := range positions {
		current := m.cells[pos]
		if !current.HasGuess() {
			m.mu.Unlock()
			return InvalidChallengeNoGuess, nil
		}
		if current.Owner(entry.Direction) == player {
			m.mu.Unlock()
			return InvalidChallengeYours, nil
		}
		allConfirmed = allConfirmed && current.IsConfirmed()
		allSame = allSame && current.Guess() == guess[i]
	}
	if allConfirmed {
		m.mu.Unlock()
		return InvalidChallengeAllConfirmed, nil
	}
	if allSame {
		m.mu.Unlock()
		return InvalidChallengeSameAsExisting, nil
	}

	challengeCorrect := guess == entry.Answer
	currentCorrect := m.entryHasCorrectGuesses(entry)
	// allSame above rules out challengeCorrect && currentCorrect both holding.

	var response string
	var toClear []Entry

	switch {
	case currentCorrect:
		m.scores[player]--
		for _, pos := range positions {
			confirmed, err := m.cells[pos].Confirmed()
			if err != nil {
				m.mu.Unlock()
				return "", err
			}
			m.cells[pos] = confirmed
		}
		response = ChallengeFailedAlreadyCorrect

	case challengeCorrect:
		m.scores[player] += challengeSuccessScore
		for i, pos := range positions {
			original := m.cells[pos]
			updated, err := original.ClearDirection(entry.Direction).WithGuess(guess[i], player, entry.Direction)
			if err != nil {
				m.mu.Unlock()
				return "", err
			}
			updated, err = updated.Confirmed()
			if err != nil {
				m.mu.Unlock()
				return "", err
			}
			m.cells[pos] = updated

			if original.Guess() != updated.Guess() {
				for _, other := range m.puzzle.entries {
					if !sameEntry(other, entry) && other.covers(pos) {
						toClear = append(toClear, other)
					}
				}
			}
		}
		response = ChallengeSuccess

	default:
		m.scores[player]--
		toClear = append(toClear, entry)
		response = ChallengeFailedBothIncorrect
	}

	m.clearEntries(toClear)
	m.mu.Unlock()

	m.notify()
	return response, nil
}

// clearEntries applies ClearDirection to every position of every entry in
// toClear and reports whether any cell actually changed. Caller must hold m.mu.
func (m *Match) clearEntries(toClear []Entry) bool {
	changed := false
	for _, e := range toClear {
		for _, pos := range e.Positions() {
			current := m.cells[pos]
			updated := current.ClearDirection(e.Direction)
			if !updated.Equal(current) {
				changed = true
			}
			m.cells[pos] = updated
		}
	}
	return changed
}

// entryHasCorrectGuesses reports whether every cell of entry currently
// holds the entry's true answer. Caller must hold m.mu.
func (m *Match) entryHasCorrectGuesses(entry Entry) bool {
	for i, pos := range entry.Positions() {
		if m.cells[pos].Guess() != entry.Answer[i] {
			return false
		}
	}
	return true
}

// IsFinished reports whether the match is over. If every entry is
// currently correct and the match was not already finalized, this call
// finalizes it as a side effect (the source's own contract: a mutator
// disguised as an observer).
func (m *Match) IsFinished() bool {
	m.mu.Lock()
	if m.finalized {
		m.mu.Unlock()
		return true
	}
	allCorrect := true
	for _, e := range m.puzzle.entries {
		if !m.entryHasCorrectGuesses(e) {
			allCorrect = false
			break
		}
	}
	m.mu.Unlock()

	if allCorrect {
		m.Finalize("")
	}
	return allCorrect
}

// Finalize ends the match, idempotently. Each correctly-guessed entry's
// owner (if any) earns +1. If forfeitingPlayer is "", every cell of every
// correct entry is also confirmed. If forfeitingPlayer names a seated
// player, that player's score is zeroed. Finalize fans out only when a
// forfeit occurred; otherwise the triggering mutation already notified.
func (m *Match) Finalize(forfeitingPlayer string) {
	m.mu.Lock()
	if m.finalized {
		m.mu.Unlock()
		return
	}
	m.finalized = true

	for _, e := range m.puzzle.entries {
		if !m.entryHasCorrectGuesses(e) {
			continue
		}
		positions := e.Positions()
		owner := m.cells[positions[0]].Owner(e.Direction)
		if owner != "" {
			m.scores[owner]++
		}
		if forfeitingPlayer == "" {
			for _, pos := range positions {
				confirmed, err := m.cells[pos].Confirmed()
				if err == nil {
					m.cells[pos] = confirmed
				}
			}
		}
	}
	if _, ok := m.scores[forfeitingPlayer]; ok {
		m.scores[forfeitingPlayer] = 0
	}
	m.mu.Unlock()

	if forfeitingPlayer != "" {
		m.notify()
	}
}

// View renders the match board for viewer, per the BOARD grammar (spec §6.2).
func (m *Match) View(viewer string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d\n", m.rows, m.cols)

	b.WriteString("Squares:\n")
	for _, pos := range allPositions(m.rows, m.cols) {
		b.WriteString(m.cells[pos].Render(viewer))
		b.WriteByte('\n')
	}

	b.WriteString("Scores:\n")
	for _, p := range m.players {
		fmt.Fprintf(&b, " %s %d\n", p, m.scores[p])
	}

	b.WriteString("Questions:\n")
	b.WriteString(m.puzzle.Questions())

	return b.String()
}

func sameEntry(a, b Entry) bool {
	return a.Answer == b.Answer && a.Clue == b.Clue && a.Direction == b.Direction &&
		a.Row == b.Row && a.Col == b.Col
}
