package game

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
)

const (
	// DefaultPlayerSeed is used when a bet request carries no player seed.
	DefaultPlayerSeed = "default"

	// HouseEdgeFactor is the fixed discount applied to fair payout odds.
	HouseEdgeFactor = 0.99

	fractionBits = 13 // hex chars of the HMAC output, 52 bits
)

// Fair owns the operator's secret seed and derives every random value in the
// system from it. It is the commitment manager, the random stream and the
// nonce allocator in one: all three share the seed's epoch, so they share one
// lock. Exactly one instance exists per process.
type Fair struct {
	mu     sync.RWMutex
	seed   string
	commit string
	nonce  int64
}

// New creates a Fair engine with a fresh cryptographically random seed.
func New() *Fair {
	seed := GenerateSeed()
	return &Fair{seed: seed, commit: HashCommitment(seed)}
}

// NewWithSeed creates a Fair engine with a fixed seed. Used by the verify
// endpoint and by tests; production code uses New.
func NewWithSeed(seed string) *Fair {
	return &Fair{seed: seed, commit: HashCommitment(seed)}
}

// GenerateSeed returns 32 bytes of secure randomness, hex encoded. A failing
// entropy source is the one condition the process cannot recover from:
// continuing would mean issuing unverifiable or predictable draws.
func GenerateSeed() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("secure random source failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// HashCommitment returns the SHA-256 hex digest published before a seed is
// used, so the seed cannot be swapped after the fact without detection.
func HashCommitment(seed string) string {
	h := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(h[:])
}

// CommitHash returns the commitment for the current epoch. The live seed is
// never exposed until Rotate retires it.
func (f *Fair) CommitHash() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.commit
}

// Rotate atomically swaps in a new seed, resets the nonce counter for the new
// epoch and returns the retired seed so it can be published. Once revealed,
// any party can recompute every draw made under the old commitment with
// DeriveFraction and check HashCommitment(revealed) against the hash that was
// published before the rotation.
func (f *Fair) Rotate() (revealedSeed, newCommit string) {
	seed := GenerateSeed()
	commit := HashCommitment(seed)

	f.mu.Lock()
	defer f.mu.Unlock()
	revealedSeed = f.seed
	f.seed = seed
	f.commit = commit
	f.nonce = 0
	return revealedSeed, commit
}

// NextNonce reserves a block of count sequence numbers within the current
// epoch and returns the first. Multi-draw games consume consecutive offsets
// from the returned value, so the whole block must be reserved up front:
// handing out single integers would let the next bet under the same player
// seed land on an offset a previous resolver already spent, and a draw
// reused with a different meaning is predictable from the earlier outcome.
// Concurrent callers get disjoint blocks.
func (f *Fair) NextNonce(count int64) int64 {
	if count < 1 {
		count = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.nonce
	f.nonce += count
	return n
}

// Fraction derives the pseudo-random fraction in [0,1) for one draw. The seed
// is snapshotted under the read lock, so every draw is attributable to exactly
// one commitment epoch even when a rotation races it. Calling again with the
// same player seed and nonce after a rotation yields a different fraction;
// that is the epoch change working as intended, not nondeterminism.
func (f *Fair) Fraction(playerSeed string, nonce int64) float64 {
	f.mu.RLock()
	seed := f.seed
	f.mu.RUnlock()
	return DeriveFraction(seed, playerSeed, nonce)
}

// DrawInt maps one draw onto [0, n).
func (f *Fair) DrawInt(playerSeed string, nonce int64, n int) int {
	return int(f.Fraction(playerSeed, nonce) * float64(n))
}

// DeriveFraction is the pure derivation function: HMAC-SHA256 keyed by the
// secret seed over "playerSeed:nonce", first 52 bits of the digest divided by
// 2^52. The MAC construction means knowing the player seed and nonce alone
// cannot forge a draw. 52 bits fit a float64 mantissa exactly, so the result
// carries no floating-point bias.
func DeriveFraction(serverSeed, playerSeed string, nonce int64) float64 {
	h := hmac.New(sha256.New, []byte(serverSeed))
	fmt.Fprintf(h, "%s:%d", playerSeed, nonce)
	digest := hex.EncodeToString(h.Sum(nil))

	v := new(big.Int)
	v.SetString(digest[:fractionBits], 16)
	return float64(v.Uint64()) / float64(uint64(1)<<52)
}
