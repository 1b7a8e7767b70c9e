package game

import "math"

const (
	diceMinTarget = 1.00
	diceMaxTarget = 99.00
)

// DiceParams selects the threshold bet: win when the roll lands over (or
// under) the target.
type DiceParams struct {
	Target float64 `json:"target"`
	IsOver bool    `json:"is_over"`
}

// DiceOutcome is the dice Result detail.
type DiceOutcome struct {
	Roll       float64 `json:"roll"`
	Target     float64 `json:"target"`
	IsOver     bool    `json:"is_over"`
	Multiplier float64 `json:"multiplier"`
}

// ResolveDice rolls a two-decimal value in [0,100) from a single draw. The
// payout multiplier is the fair odds for the configured threshold discounted
// by the house edge, and the payout is floored to the cent.
func ResolveDice(f *Fair, bet float64, playerSeed string, nonce int64, p DiceParams) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}
	if p.Target < diceMinTarget || p.Target > diceMaxTarget {
		return Result{}, ErrInvalidParams
	}

	roll := math.Floor(f.Fraction(playerSeed, nonce)*10000) / 100

	won := roll < p.Target
	if p.IsOver {
		won = roll > p.Target
	}

	mult := DiceMultiplier(p.Target, p.IsOver)
	payout := 0.0
	if won {
		payout = floorCents(bet * mult)
	}

	return Result{
		Won:    won,
		Payout: payout,
		Nonce:  nonce,
		Detail: DiceOutcome{Roll: roll, Target: p.Target, IsOver: p.IsOver, Multiplier: mult},
	}, nil
}

// DiceMultiplier is the edge-discounted fair multiplier for a threshold bet:
// HouseEdgeFactor divided by the win probability.
func DiceMultiplier(target float64, isOver bool) float64 {
	winChance := target / 100
	if isOver {
		winChance = (100 - target) / 100
	}
	return HouseEdgeFactor / winChance
}
