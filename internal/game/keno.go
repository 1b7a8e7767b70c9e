package game

const (
	KenoPoolSize  = 40
	KenoDrawCount = 10
	kenoMaxPicks  = 10

	// KenoShuffleDraws is the stream width of one keno bet: one draw per
	// Fisher-Yates step.
	KenoShuffleDraws = KenoPoolSize - 1
)

// kenoPaytable maps pick count -> hit count -> multiplier. Rows omit hit
// counts that pay nothing.
var kenoPaytable = map[int]map[int]float64{
	1:  {1: 3.6},
	2:  {2: 14.0},
	3:  {2: 2.0, 3: 40.0},
	4:  {2: 1.6, 3: 9.0, 4: 100.0},
	5:  {3: 3.0, 4: 25.0, 5: 300.0},
	6:  {3: 2.0, 4: 8.0, 5: 70.0, 6: 700.0},
	7:  {4: 5.0, 5: 25.0, 6: 150.0, 7: 1500.0},
	8:  {4: 3.0, 5: 12.0, 6: 80.0, 7: 500.0, 8: 3000.0},
	9:  {5: 8.0, 6: 40.0, 7: 200.0, 8: 1500.0, 9: 5000.0},
	10: {5: 5.0, 6: 24.0, 7: 120.0, 8: 600.0, 9: 2500.0, 10: 10000.0},
}

// KenoParams carries the player's chosen numbers, 1..10 picks from 1..40.
type KenoParams struct {
	Picks []int `json:"picks"`
}

// KenoOutcome is the keno Result detail.
type KenoOutcome struct {
	Drawn      []int   `json:"drawn"`
	Hits       []int   `json:"hits"`
	Multiplier float64 `json:"multiplier"`
}

// ResolveKeno shuffles the 1..40 pool with a Fisher-Yates walk driven
// entirely by the stream, one draw per swap at consecutive nonce offsets,
// and takes the first ten numbers as the drawn set. The hit count indexes
// the paytable row for the player's pick count.
func ResolveKeno(f *Fair, bet float64, playerSeed string, nonce int64, p KenoParams) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}
	if len(p.Picks) < 1 || len(p.Picks) > kenoMaxPicks {
		return Result{}, ErrInvalidParams
	}
	picked := make(map[int]bool, len(p.Picks))
	for _, n := range p.Picks {
		if n < 1 || n > KenoPoolSize || picked[n] {
			return Result{}, ErrInvalidParams
		}
		picked[n] = true
	}

	pool := make([]int, KenoPoolSize)
	for i := range pool {
		pool[i] = i + 1
	}
	step := int64(0)
	for i := KenoPoolSize - 1; i > 0; i-- {
		j := f.DrawInt(playerSeed, nonce+step, i+1)
		pool[i], pool[j] = pool[j], pool[i]
		step++
	}
	drawn := pool[:KenoDrawCount]

	hits := make([]int, 0, len(p.Picks))
	for _, n := range drawn {
		if picked[n] {
			hits = append(hits, n)
		}
	}

	mult := kenoPaytable[len(p.Picks)][len(hits)]
	payout := 0.0
	if mult > 0 {
		payout = floorCents(bet * mult)
	}

	return Result{
		Won:    mult > 0,
		Payout: payout,
		Nonce:  nonce,
		Detail: KenoOutcome{Drawn: append([]int(nil), drawn...), Hits: hits, Multiplier: mult},
	}, nil
}
