package game

// wheelSegments is the fixed, non-uniform segment table. Repeating the low
// multipliers weights the wheel toward them; the 10x segment appears once.
var wheelSegments = []float64{
	1.5, 0.0, 1.2, 0.0, 2.0, 0.0, 1.2, 0.0, 3.0,
	0.0, 1.2, 0.0, 1.5, 0.0, 2.0, 10.0,
}

// WheelOutcome is the wheel Result detail.
type WheelOutcome struct {
	Segment    int     `json:"segment"`
	Multiplier float64 `json:"multiplier"`
}

// ResolveWheel selects one segment from a single draw.
func ResolveWheel(f *Fair, bet float64, playerSeed string, nonce int64) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}

	segment := f.DrawInt(playerSeed, nonce, len(wheelSegments))
	mult := wheelSegments[segment]

	return Result{
		Won:    mult > 0,
		Payout: floorCents(bet * mult),
		Nonce:  nonce,
		Detail: WheelOutcome{Segment: segment, Multiplier: mult},
	}, nil
}
