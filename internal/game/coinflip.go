package game

// CoinflipMultiplier encodes the house edge: a fair coin would pay 2.00x.
const CoinflipMultiplier = 1.98

// CoinflipParams carries the player's call, "heads" or "tails".
type CoinflipParams struct {
	Pick string `json:"pick"`
}

// CoinflipOutcome is the coinflip Result detail.
type CoinflipOutcome struct {
	Face string `json:"face"`
	Pick string `json:"pick"`
}

// ResolveCoinflip maps a single draw onto the two faces: fractions below 0.5
// land heads, the rest tails.
func ResolveCoinflip(f *Fair, bet float64, playerSeed string, nonce int64, p CoinflipParams) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}
	if p.Pick != "heads" && p.Pick != "tails" {
		return Result{}, ErrInvalidParams
	}

	face := "tails"
	if f.Fraction(playerSeed, nonce) < 0.5 {
		face = "heads"
	}

	won := face == p.Pick
	payout := 0.0
	if won {
		payout = floorCents(bet * CoinflipMultiplier)
	}

	return Result{
		Won:    won,
		Payout: payout,
		Nonce:  nonce,
		Detail: CoinflipOutcome{Face: face, Pick: p.Pick},
	}, nil
}
