package game

// European wheel: pockets 0-36, single zero.
const roulettePockets = 37

var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

// RouletteParams selects the bet type and its pick. Number bets pick a
// pocket; color bets pick "red" or "black"; parity bets pick "odd" or "even".
type RouletteParams struct {
	BetType string `json:"bet_type"` // "number", "color", "parity"
	Number  int    `json:"number,omitempty"`
	Pick    string `json:"pick,omitempty"`
}

// RouletteOutcome is the roulette Result detail.
type RouletteOutcome struct {
	Pocket     int     `json:"pocket"`
	Color      string  `json:"color"`
	Multiplier float64 `json:"multiplier"`
}

// ResolveRoulette spins once: a single draw over the 37 pockets. Each bet
// type has its own win predicate and base multiplier; the house edge is a
// fixed discount on the payout, never on the win probability. Zero loses
// color and parity bets.
func ResolveRoulette(f *Fair, bet float64, playerSeed string, nonce int64, p RouletteParams) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}

	var won func(pocket int) bool
	var mult float64
	switch p.BetType {
	case "number":
		if p.Number < 0 || p.Number >= roulettePockets {
			return Result{}, ErrInvalidParams
		}
		mult = 36
		won = func(pocket int) bool { return pocket == p.Number }
	case "color":
		if p.Pick != "red" && p.Pick != "black" {
			return Result{}, ErrInvalidParams
		}
		mult = 2
		won = func(pocket int) bool { return pocket != 0 && pocketColor(pocket) == p.Pick }
	case "parity":
		if p.Pick != "odd" && p.Pick != "even" {
			return Result{}, ErrInvalidParams
		}
		mult = 2
		won = func(pocket int) bool {
			if pocket == 0 {
				return false
			}
			if p.Pick == "odd" {
				return pocket%2 == 1
			}
			return pocket%2 == 0
		}
	default:
		return Result{}, ErrInvalidParams
	}

	pocket := f.DrawInt(playerSeed, nonce, roulettePockets)

	payout := 0.0
	if won(pocket) {
		payout = floorCents(bet * mult * HouseEdgeFactor)
	}

	return Result{
		Won:    won(pocket),
		Payout: payout,
		Nonce:  nonce,
		Detail: RouletteOutcome{Pocket: pocket, Color: pocketColor(pocket), Multiplier: mult},
	}, nil
}

func pocketColor(pocket int) string {
	switch {
	case pocket == 0:
		return "green"
	case rouletteRed[pocket]:
		return "red"
	default:
		return "black"
	}
}
