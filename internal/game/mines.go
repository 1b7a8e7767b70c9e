package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	MinesGridSize  = 25 // 5x5
	MinesMineCount = 3

	// Each safe reveal raises the payout multiplier by this step.
	minesRevealStep = 0.2
)

// Board is the ephemeral per-session mines grid. Mine positions are fixed at
// creation from the fairness stream; reveals mutate it under its own lock so
// two requests for the same session cannot race the revealed-cell count.
type Board struct {
	mu sync.Mutex

	ID        string
	SessionID string
	Bet       float64
	Nonce     int64
	Mines     map[int]bool
	Revealed  map[int]bool
	Busted    bool
	CreatedAt time.Time
}

// BoardStore holds at most one live board per session. A new board replaces
// the previous one; a bust or cashout removes it. Boards are never merged
// across sessions.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[string]*Board
}

func NewBoardStore() *BoardStore {
	return &BoardStore{boards: make(map[string]*Board)}
}

// MinesRevealOutcome is returned for each reveal.
type MinesRevealOutcome struct {
	BoardID       string  `json:"board_id"`
	Cell          int     `json:"cell"`
	IsMine        bool    `json:"is_mine"`
	RevealedCount int     `json:"revealed_count"`
	Multiplier    float64 `json:"multiplier"`
	Payout        float64 `json:"payout"`
}

// NewBoard creates a board for the session, replacing any existing one. The
// mine cells are drawn from the stream at consecutive offsets of the given
// nonce, so the layout is reproducible from the revealed seed.
func (s *BoardStore) NewBoard(f *Fair, sessionID string, bet float64, playerSeed string, nonce int64) (*Board, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}

	board := &Board{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Bet:       bet,
		Nonce:     nonce,
		Mines:     mineCells(f, playerSeed, nonce),
		Revealed:  make(map[int]bool),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.boards[sessionID] = board
	s.mu.Unlock()
	return board, nil
}

// Reveal uncovers one cell on the session's live board. Hitting a mine
// forfeits the bet and invalidates the board; a safe reveal advances the
// multiplier. A reveal with no live board is rejected with ErrStaleBoard
// rather than implicitly creating one, since implicit creation would consume
// a stake the caller never confirmed.
func (s *BoardStore) Reveal(sessionID string, cell int) (MinesRevealOutcome, error) {
	if cell < 0 || cell >= MinesGridSize {
		return MinesRevealOutcome{}, ErrInvalidParams
	}

	s.mu.RLock()
	board := s.boards[sessionID]
	s.mu.RUnlock()
	if board == nil {
		return MinesRevealOutcome{}, ErrStaleBoard
	}

	board.mu.Lock()
	defer board.mu.Unlock()

	if board.Busted {
		return MinesRevealOutcome{}, ErrStaleBoard
	}
	if board.Revealed[cell] {
		return MinesRevealOutcome{}, ErrInvalidParams
	}

	if board.Mines[cell] {
		board.Busted = true
		s.remove(sessionID, board)
		return MinesRevealOutcome{
			BoardID: board.ID,
			Cell:    cell,
			IsMine:  true,
		}, nil
	}

	board.Revealed[cell] = true
	mult := MinesMultiplier(len(board.Revealed))
	return MinesRevealOutcome{
		BoardID:       board.ID,
		Cell:          cell,
		RevealedCount: len(board.Revealed),
		Multiplier:    mult,
		Payout:        floorCents(board.Bet * mult),
	}, nil
}

// Cashout settles the session's live board at its current multiplier and
// removes it. At least one safe reveal is required.
func (s *BoardStore) Cashout(sessionID string) (Result, error) {
	s.mu.RLock()
	board := s.boards[sessionID]
	s.mu.RUnlock()
	if board == nil {
		return Result{}, ErrStaleBoard
	}

	board.mu.Lock()
	defer board.mu.Unlock()

	if board.Busted {
		return Result{}, ErrStaleBoard
	}
	if len(board.Revealed) == 0 {
		return Result{}, ErrInvalidParams
	}

	s.remove(sessionID, board)

	mult := MinesMultiplier(len(board.Revealed))
	return Result{
		Won:    true,
		Payout: floorCents(board.Bet * mult),
		Nonce:  board.Nonce,
		Detail: MinesRevealOutcome{
			BoardID:       board.ID,
			RevealedCount: len(board.Revealed),
			Multiplier:    mult,
			Payout:        floorCents(board.Bet * mult),
		},
	}, nil
}

// remove drops the board only if it is still the session's current one, so a
// replacement created meanwhile is left alone.
func (s *BoardStore) remove(sessionID string, board *Board) {
	s.mu.Lock()
	if s.boards[sessionID] == board {
		delete(s.boards, sessionID)
	}
	s.mu.Unlock()
}

// MinesMultiplier grows linearly with the number of safe reveals.
func MinesMultiplier(revealed int) float64 {
	return 1 + minesRevealStep*float64(revealed)
}

// mineCells places the mines uniformly over the grid with a partial
// Fisher-Yates walk: exactly MinesMineCount draws at consecutive nonce
// offsets, each swap settling one distinct cell. The fixed draw count lets
// the nonce allocator reserve the whole block for the bet.
func mineCells(f *Fair, playerSeed string, nonce int64) map[int]bool {
	pool := make([]int, MinesGridSize)
	for i := range pool {
		pool[i] = i
	}
	step := int64(0)
	for i := MinesGridSize - 1; i >= MinesGridSize-MinesMineCount; i-- {
		j := f.DrawInt(playerSeed, nonce+step, i+1)
		pool[i], pool[j] = pool[j], pool[i]
		step++
	}

	mines := make(map[int]bool, MinesMineCount)
	for _, cell := range pool[MinesGridSize-MinesMineCount:] {
		mines[cell] = true
	}
	return mines
}
