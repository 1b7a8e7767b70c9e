package game

import (
	"errors"
	"testing"
)

func TestValidateBet(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"minimum bet", MinBetAmount, false},
		{"maximum bet", MaxBetAmount, false},
		{"mid-range bet", 250.50, false},
		{"below minimum", 0.99, true},
		{"zero", 0, true},
		{"negative", -10, true},
		{"above maximum", 10000.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBet(tt.amount)
			if tt.wantErr && !errors.Is(err, ErrInvalidBet) {
				t.Errorf("validateBet(%v) error = %v, want %v", tt.amount, err, ErrInvalidBet)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateBet(%v) error = %v, want nil", tt.amount, err)
			}
		})
	}
}

func TestFloorCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.999, 1.99},
		{1.991, 1.99},
		{198.0, 198.0},
		{0.005, 0.0},
		{123.456, 123.45},
	}

	for _, tt := range tests {
		if got := floorCents(tt.in); got != tt.want {
			t.Errorf("floorCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
