package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"fairplay/internal/game"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		defaultVal string
		envValue   string
		want       string
	}{
		{
			name:       "Environment variable exists",
			key:        "TEST_KEY_EXISTS",
			defaultVal: "default",
			envValue:   "custom_value",
			want:       "custom_value",
		},
		{
			name:       "Environment variable does not exist",
			key:        "TEST_KEY_NOT_EXISTS",
			defaultVal: "default_value",
			envValue:   "",
			want:       "default_value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		defaultVal int
		envValue   string
		want       int
	}{
		{
			name:       "Valid integer",
			key:        "TEST_INT_VALID",
			defaultVal: 0,
			envValue:   "42",
			want:       42,
		},
		{
			name:       "Invalid integer",
			key:        "TEST_INT_INVALID",
			defaultVal: 10,
			envValue:   "not_a_number",
			want:       10,
		},
		{
			name:       "Empty value",
			key:        "TEST_INT_EMPTY",
			defaultVal: 5,
			envValue:   "",
			want:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvAsInt(tt.key, tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestService_Interface(t *testing.T) {
	var _ Service = (*service)(nil)

	// The game core declares the wallet contract it settles against.
	var _ game.Wallet = (Service)(nil)
}

// Wallet integration tests require a running Redis instance; they skip
// themselves when one is not reachable.
func walletService(t *testing.T) Service {
	t.Helper()

	srv := New()
	if srv == nil {
		t.Skip("redis not available")
	}
	return srv
}

func TestWallet_BalanceMissingKey(t *testing.T) {
	srv := walletService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	balance, err := srv.Balance(ctx, "wallet-test-missing")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance != 0 {
		t.Errorf("Balance() = %v for a missing key, want 0", balance)
	}
}

func TestWallet_AdjustRoundTrip(t *testing.T) {
	srv := walletService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const userID = "wallet-test-roundtrip"
	if err := srv.SetBalance(ctx, userID, 100); err != nil {
		t.Fatalf("SetBalance() error = %v", err)
	}

	balance, err := srv.Adjust(ctx, userID, -40)
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if balance != 60 {
		t.Errorf("balance after debit = %v, want 60", balance)
	}

	balance, err = srv.Adjust(ctx, userID, 15.5)
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if balance != 75.5 {
		t.Errorf("balance after credit = %v, want 75.5", balance)
	}
}

func TestWallet_AdjustOverdraw(t *testing.T) {
	srv := walletService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const userID = "wallet-test-overdraw"
	if err := srv.SetBalance(ctx, userID, 50); err != nil {
		t.Fatalf("SetBalance() error = %v", err)
	}

	balance, err := srv.Adjust(ctx, userID, -80)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Adjust() error = %v, want %v", err, ErrInsufficientFunds)
	}
	if balance != 50 {
		t.Errorf("balance after rejected debit = %v, want the untouched 50", balance)
	}
}
