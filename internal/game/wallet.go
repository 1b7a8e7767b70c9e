package game

import "context"

// Wallet is the external balance collaborator. The core never reads or
// writes balance storage; it only asks for signed deltas to be applied.
type Wallet interface {
	Balance(ctx context.Context, userID string) (float64, error)
	// Adjust applies a signed delta and returns the new balance. A delta
	// that would take the balance negative must be rejected without
	// mutating anything.
	Adjust(ctx context.Context, userID string, delta float64) (float64, error)
}
