package game

// Cards are drawn from a 13-value rank space: 2..10 at face value, 11..13 the
// jack/queen/king, 14 the ace. Suits are cosmetic and never drawn.

const (
	rankJack  = 11
	rankQueen = 12
	rankKing  = 13
	rankAce   = 14

	// HiLoDrawCount is the stream width of one hi-lo bet: the reference
	// card and the played card.
	HiLoDrawCount = 2

	// BlackjackMaxDraws bounds one blackjack hand's stream width. A hand
	// drawing to 17 tops out at eleven cards (six twos then five aces),
	// for each side.
	BlackjackMaxDraws = 22
)

var rankNames = map[int]string{
	rankJack: "J", rankQueen: "Q", rankKing: "K", rankAce: "A",
}

func rankName(rank int) string {
	if name, ok := rankNames[rank]; ok {
		return name
	}
	return map[int]string{2: "2", 3: "3", 4: "4", 5: "5", 6: "6", 7: "7",
		8: "8", 9: "9", 10: "10"}[rank]
}

// drawRank maps one draw onto the 13 ranks, 2..14.
func drawRank(f *Fair, playerSeed string, nonce int64) int {
	return f.DrawInt(playerSeed, nonce, 13) + 2
}

// HiLoParams carries the player's call against the reference card.
type HiLoParams struct {
	Guess string `json:"guess"` // "higher" or "lower"
}

// HiLoOutcome is the hi-lo Result detail.
type HiLoOutcome struct {
	Reference  string  `json:"reference"`
	Drawn      string  `json:"drawn"`
	Guess      string  `json:"guess"`
	Multiplier float64 `json:"multiplier"`
}

// ResolveHiLo draws a reference card at the given nonce and the played card
// at nonce+1. Strict inequality wins; an exact rank tie is a push, reported
// distinctly from a loss and refunding the stake. The multiplier is the
// edge-discounted fair odds for the reference rank, so calling "higher"
// against a 3 pays far less than calling it against a king.
func ResolveHiLo(f *Fair, bet float64, playerSeed string, nonce int64, p HiLoParams) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}
	if p.Guess != "higher" && p.Guess != "lower" {
		return Result{}, ErrInvalidParams
	}

	ref := drawRank(f, playerSeed, nonce)
	drawn := drawRank(f, playerSeed, nonce+1)

	// Winning ranks out of 13 for this call, ties excluded.
	winning := ref - 2
	if p.Guess == "higher" {
		winning = rankAce - ref
	}
	// A call that no rank can satisfy (higher than an ace, lower than a two)
	// resolves as a tie-or-loss below; it just has no payable multiplier.
	mult := 0.0
	if winning > 0 {
		mult = HouseEdgeFactor / (float64(winning) / 13)
	}

	outcome := HiLoOutcome{
		Reference:  rankName(ref),
		Drawn:      rankName(drawn),
		Guess:      p.Guess,
		Multiplier: mult,
	}

	if drawn == ref {
		return Result{Push: true, Payout: bet, Nonce: nonce, Detail: outcome}, nil
	}

	won := drawn < ref
	if p.Guess == "higher" {
		won = drawn > ref
	}
	payout := 0.0
	if won {
		payout = floorCents(bet * mult)
	}
	return Result{Won: won, Payout: payout, Nonce: nonce, Detail: outcome}, nil
}

// BlackjackOutcome is the blackjack Result detail.
type BlackjackOutcome struct {
	PlayerCards []string `json:"player_cards"`
	DealerCards []string `json:"dealer_cards"`
	PlayerTotal int      `json:"player_total"`
	DealerTotal int      `json:"dealer_total"`
	Outcome     string   `json:"outcome"` // win, lose, push, player_bust, dealer_bust
}

// ResolveBlackjack deals both hands from one consecutive-nonce card stream:
// two cards each, then the player draws to 17, then the dealer draws to 17.
// A player bust is its own outcome, distinct from losing on totals; equal
// totals push and return the stake; a win pays even money.
func ResolveBlackjack(f *Fair, bet float64, playerSeed string, nonce int64) (Result, error) {
	if err := validateBet(bet); err != nil {
		return Result{}, err
	}

	next := nonce
	deal := func() int {
		r := drawRank(f, playerSeed, next)
		next++
		return r
	}

	player := []int{deal(), deal()}
	dealer := []int{deal(), deal()}

	for HandTotal(player) < 17 {
		player = append(player, deal())
	}
	playerTotal := HandTotal(player)

	dealerTotal := HandTotal(dealer)
	if playerTotal <= 21 {
		for dealerTotal < 17 {
			dealer = append(dealer, deal())
			dealerTotal = HandTotal(dealer)
		}
	}

	outcome := BlackjackOutcome{
		PlayerCards: cardNames(player),
		DealerCards: cardNames(dealer),
		PlayerTotal: playerTotal,
		DealerTotal: dealerTotal,
	}

	switch {
	case playerTotal > 21:
		outcome.Outcome = "player_bust"
		return Result{Payout: 0, Nonce: nonce, Detail: outcome}, nil
	case dealerTotal > 21:
		outcome.Outcome = "dealer_bust"
		return Result{Won: true, Payout: floorCents(bet * 2), Nonce: nonce, Detail: outcome}, nil
	case playerTotal == dealerTotal:
		outcome.Outcome = "push"
		return Result{Push: true, Payout: bet, Nonce: nonce, Detail: outcome}, nil
	case playerTotal > dealerTotal:
		outcome.Outcome = "win"
		return Result{Won: true, Payout: floorCents(bet * 2), Nonce: nonce, Detail: outcome}, nil
	default:
		outcome.Outcome = "lose"
		return Result{Payout: 0, Nonce: nonce, Detail: outcome}, nil
	}
}

// HandTotal scores a blackjack hand: face cards count 10, aces count 11 and
// drop to 1 one at a time while the hand would otherwise bust.
func HandTotal(ranks []int) int {
	total, aces := 0, 0
	for _, r := range ranks {
		switch {
		case r == rankAce:
			total += 11
			aces++
		case r >= rankJack:
			total += 10
		default:
			total += r
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func cardNames(ranks []int) []string {
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = rankName(r)
	}
	return names
}
