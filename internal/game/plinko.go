package game

// PlinkoRows is the fixed number of peg rows: twelve independent binary
// steps, so the landing slot is the count of rightward bounces, 0..12.
const PlinkoRows = 12

// plinkoMultipliers is the fixed symmetric table indexed by landing slot.
// The center slots carry sub-1.0 values; the binomial weighting of the walk
// is what makes the edges rare.
var plinkoMultipliers = [PlinkoRows + 1]float64{
	24.0, 8.0, 3.0, 1.6, 1.0, 0.7, 0.5, 0.7, 1.0, 1.6, 3.0, 8.0, 24.0,
}

// PlinkoOutcome is the plinko Result detail.
type PlinkoOutcome struct {
	Path       []int   `json:"path"` // 0 = left, 1 = right
	Slot       int     `json:"slot"`
	Multiplier float64 `json:"multiplier"`
}

// ResolvePlinko simulates the twelve bounces, each from its own draw at a
// consecutive nonce offset, and sums them into the multiplier table.
func ResolvePlinko(f *Fair, bet float64, playerSeed string, nonce int64) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}

	path := make([]int, PlinkoRows)
	slot := 0
	for i := range path {
		step := f.DrawInt(playerSeed, nonce+int64(i), 2)
		path[i] = step
		slot += step
	}

	mult := plinkoMultipliers[slot]
	return Result{
		Won:    mult >= 1.0,
		Payout: floorCents(bet * mult),
		Nonce:  nonce,
		Detail: PlinkoOutcome{Path: path, Slot: slot, Multiplier: mult},
	}, nil
}
