package game

import (
	"errors"
	"testing"
)

func TestHandTotal(t *testing.T) {
	tests := []struct {
		name  string
		ranks []int
		want  int
	}{
		{"simple hand", []int{2, 9}, 11},
		{"face cards count ten", []int{rankJack, rankQueen}, 20},
		{"blackjack", []int{rankAce, rankKing}, 21},
		{"soft ace stays high", []int{rankAce, 5}, 16},
		{"ace drops to one", []int{rankAce, 9, 5}, 15},
		{"two aces one drops", []int{rankAce, rankAce, 9}, 21},
		{"two aces both drop", []int{rankAce, rankAce, rankKing, 9}, 21},
		{"bust", []int{rankKing, rankQueen, 5}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandTotal(tt.ranks); got != tt.want {
				t.Errorf("HandTotal(%v) = %d, want %d", tt.ranks, got, tt.want)
			}
		})
	}
}

func TestResolveHiLo(t *testing.T) {
	f := NewWithSeed(testSeed)

	// Seed "test" draws K at nonce 0 and 4 at nonce 1.
	t.Run("lower against king wins", func(t *testing.T) {
		got, err := ResolveHiLo(f, 100, "test", 0, HiLoParams{Guess: "lower"})
		if err != nil {
			t.Fatalf("ResolveHiLo() error = %v", err)
		}
		outcome := got.Detail.(HiLoOutcome)
		if outcome.Reference != "K" || outcome.Drawn != "4" {
			t.Errorf("cards = %s/%s, want K/4", outcome.Reference, outcome.Drawn)
		}
		if !got.Won {
			t.Error("won = false, want true")
		}
		// 11 of 13 ranks sit below a king: 0.99 / (11/13) = 1.17x
		if got.Payout != 117.00 {
			t.Errorf("payout = %v, want 117.00", got.Payout)
		}
	})

	t.Run("higher against king loses", func(t *testing.T) {
		got, err := ResolveHiLo(f, 100, "test", 0, HiLoParams{Guess: "higher"})
		if err != nil {
			t.Fatalf("ResolveHiLo() error = %v", err)
		}
		if got.Won || got.Payout != 0 {
			t.Errorf("got won=%v payout=%v, want a loss", got.Won, got.Payout)
		}
	})

	// Seed "test" draws the same rank at nonces 12 and 13.
	t.Run("rank tie pushes", func(t *testing.T) {
		got, err := ResolveHiLo(f, 100, "test", 12, HiLoParams{Guess: "higher"})
		if err != nil {
			t.Fatalf("ResolveHiLo() error = %v", err)
		}
		if !got.Push {
			t.Error("push = false, want true")
		}
		if got.Won {
			t.Error("won = true on a push")
		}
		if got.Payout != 100 {
			t.Errorf("payout = %v, want the stake back", got.Payout)
		}
	})

	// Seed "hilo" draws an ace at nonce 1; nothing ranks higher.
	t.Run("higher against ace cannot pay", func(t *testing.T) {
		got, err := ResolveHiLo(f, 100, "hilo", 1, HiLoParams{Guess: "higher"})
		if err != nil {
			t.Fatalf("ResolveHiLo() error = %v", err)
		}
		if got.Won || got.Push || got.Payout != 0 {
			t.Errorf("got won=%v push=%v payout=%v, want a plain loss", got.Won, got.Push, got.Payout)
		}
		if mult := got.Detail.(HiLoOutcome).Multiplier; mult != 0 {
			t.Errorf("multiplier = %v, want 0", mult)
		}
	})
}

func TestResolveHiLo_InvalidGuess(t *testing.T) {
	f := NewWithSeed(testSeed)

	if _, err := ResolveHiLo(f, 100, "test", 0, HiLoParams{Guess: "same"}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("ResolveHiLo() error = %v, want %v", err, ErrInvalidParams)
	}
}

func TestResolveBlackjack(t *testing.T) {
	f := NewWithSeed(testSeed)

	tests := []struct {
		name        string
		playerSeed  string
		wantOutcome string
		wantWon     bool
		wantPush    bool
		wantPayout  float64
	}{
		// "test" from nonce 0: player K,4,7 = 21 beats dealer 10,5,5 = 20.
		{"player wins on totals", "test", "win", true, false, 200.00},
		// "bj" from nonce 0: player draws to 25 and busts.
		{"player bust", "bj", "player_bust", false, false, 0},
		// "bust" from nonce 0: both hands land on 19.
		{"equal totals push", "bust", "push", false, true, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBlackjack(f, 100, tt.playerSeed, 0)
			if err != nil {
				t.Fatalf("ResolveBlackjack() error = %v", err)
			}
			outcome := got.Detail.(BlackjackOutcome)
			if outcome.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %v, want %v (player %v=%d, dealer %v=%d)",
					outcome.Outcome, tt.wantOutcome,
					outcome.PlayerCards, outcome.PlayerTotal,
					outcome.DealerCards, outcome.DealerTotal)
			}
			if got.Won != tt.wantWon || got.Push != tt.wantPush {
				t.Errorf("won=%v push=%v, want won=%v push=%v", got.Won, got.Push, tt.wantWon, tt.wantPush)
			}
			if got.Payout != tt.wantPayout {
				t.Errorf("payout = %v, want %v", got.Payout, tt.wantPayout)
			}
		})
	}
}

func TestResolveBlackjack_DealerStandsWhenPlayerBusts(t *testing.T) {
	f := NewWithSeed(testSeed)

	// "bj" from nonce 0 busts the player; the dealer must keep its dealt 15.
	got, err := ResolveBlackjack(f, 100, "bj", 0)
	if err != nil {
		t.Fatalf("ResolveBlackjack() error = %v", err)
	}
	outcome := got.Detail.(BlackjackOutcome)
	if len(outcome.DealerCards) != 2 {
		t.Errorf("dealer drew %d cards after a player bust, want the dealt 2", len(outcome.DealerCards))
	}
}

func TestResolveBlackjack_DrawsWithinReservedBlock(t *testing.T) {
	f := NewWithSeed(testSeed)

	for nonce := int64(0); nonce < 200; nonce++ {
		got, err := ResolveBlackjack(f, 100, "width", nonce*BlackjackMaxDraws)
		if err != nil {
			t.Fatalf("ResolveBlackjack() error = %v", err)
		}
		outcome := got.Detail.(BlackjackOutcome)
		cards := len(outcome.PlayerCards) + len(outcome.DealerCards)
		if cards > BlackjackMaxDraws {
			t.Fatalf("hand consumed %d draws, reserved block is %d", cards, BlackjackMaxDraws)
		}
	}
}

func TestResolveBlackjack_Deterministic(t *testing.T) {
	f := NewWithSeed(testSeed)

	first, err := ResolveBlackjack(f, 100, "replay", 7)
	if err != nil {
		t.Fatalf("ResolveBlackjack() error = %v", err)
	}
	second, err := ResolveBlackjack(f, 100, "replay", 7)
	if err != nil {
		t.Fatalf("ResolveBlackjack() error = %v", err)
	}

	a := first.Detail.(BlackjackOutcome)
	b := second.Detail.(BlackjackOutcome)
	if a.Outcome != b.Outcome || a.PlayerTotal != b.PlayerTotal || a.DealerTotal != b.DealerTotal {
		t.Errorf("same seed and nonce produced %+v then %+v", a, b)
	}
}
