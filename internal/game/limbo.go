package game

const limboMaxTarget = 1000000.0

// LimboParams carries the player-chosen target multiplier.
type LimboParams struct {
	Target float64 `json:"target"`
}

// LimboOutcome is the limbo Result detail.
type LimboOutcome struct {
	Fraction float64 `json:"fraction"`
	Target   float64 `json:"target"`
}

// ResolveLimbo wins when the draw lands below the edge-scaled reciprocal of
// the target; the win then pays bet * target * edge factor.
func ResolveLimbo(f *Fair, bet float64, playerSeed string, nonce int64, p LimboParams) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}
	if p.Target <= 1.0 || p.Target > limboMaxTarget {
		return Result{}, ErrInvalidParams
	}

	u := f.Fraction(playerSeed, nonce)
	won := u < HouseEdgeFactor/p.Target
	payout := 0.0
	if won {
		payout = floorCents(bet * p.Target * HouseEdgeFactor)
	}

	return Result{
		Won:    won,
		Payout: payout,
		Nonce:  nonce,
		Detail: LimboOutcome{Fraction: u, Target: p.Target},
	}, nil
}
