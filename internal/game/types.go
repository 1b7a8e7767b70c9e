package game

import (
	"errors"
	"math"
)

const (
	MinBetAmount = 1.0
	MaxBetAmount = 10000.0
)

var (
	// ErrInvalidBet rejects a non-positive or out-of-range stake.
	ErrInvalidBet = errors.New("invalid bet amount")
	// ErrInvalidParams rejects bad game parameters before any nonce is spent.
	ErrInvalidParams = errors.New("invalid game parameters")
	// ErrStaleBoard rejects a reveal against a board that no longer exists.
	ErrStaleBoard = errors.New("no active board for session")
	// ErrRaceViolation rejects a cashout claim that was never broadcast.
	ErrRaceViolation = errors.New("claimed multiplier was not observed")
)

// Result is the uniform outcome every resolver returns. Payout is expressed
// in the same unit as the stake: 0 on a loss, the stake itself on a push, the
// stake times the game multiplier on a win. Detail carries the game-specific
// outcome structure.
type Result struct {
	Won    bool    `json:"won"`
	Push   bool    `json:"push,omitempty"`
	Payout float64 `json:"payout"`
	Nonce  int64   `json:"nonce"`
	Detail any     `json:"detail"`
}

// validateBet enforces the shared stake bounds for every resolver.
func validateBet(amount float64) error {
	if amount < MinBetAmount || amount > MaxBetAmount {
		return ErrInvalidBet
	}
	return nil
}

// floorCents truncates to two decimals. Payouts never round up.
func floorCents(v float64) float64 {
	return math.Floor(v*100) / 100
}
