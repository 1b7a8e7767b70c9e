package game

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Crash round phases. Exactly one round instance exists process-wide; Idle is
// the gap between rounds.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseRunning Phase = "RUNNING"
	PhaseEnded   Phase = "ENDED"
)

const (
	crashMinMultiplier = 1.0
	crashMaxMultiplier = 1000.0
	cashoutTimeout     = 500 * time.Millisecond
)

// Broadcaster fans a message out to every subscriber without blocking the
// caller. The websocket hub implements it; tests substitute a recorder.
type Broadcaster interface {
	Broadcast(message interface{})
}

// RoundStore persists finished rounds for the audit log. May be nil.
type RoundStore interface {
	SaveRound(ctx context.Context, round RoundRecord) error
}

// RoundRecord is the audit row written when a round ends.
type RoundRecord struct {
	RoundID    string
	Nonce      int64
	Commit     string
	Multiplier float64
	StartedAt  time.Time
	EndedAt    time.Time
}

// SchedulerConfig sizes the round clock. Tests shrink the intervals and swap
// the curve so a round finishes in milliseconds.
type SchedulerConfig struct {
	TickInterval time.Duration
	RoundDelay   time.Duration
	// Curve maps elapsed seconds to the current multiplier. Must be
	// monotonically increasing from 1.0.
	Curve func(elapsed float64) float64
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickInterval: 100 * time.Millisecond,
		RoundDelay:   3 * time.Second,
		Curve:        defaultCurve,
	}
}

func defaultCurve(elapsed float64) float64 {
	m := 1.0 + elapsed/1.5 + elapsed*elapsed*0.005
	return math.Floor(m*100) / 100
}

// RoundSnapshot is what a late subscriber sees on join: the phase plus the
// multiplier-so-far, or the terminal multiplier once the round has ended.
type RoundSnapshot struct {
	Type       string  `json:"type"`
	Phase      Phase   `json:"phase"`
	RoundID    string  `json:"round_id,omitempty"`
	Multiplier float64 `json:"multiplier"`
}

// CrashCashoutRequest is the self-reported cashout: a stake and the
// multiplier the caller claims to have left at.
type CrashCashoutRequest struct {
	UserID            string  `json:"user_id"`
	Amount            float64 `json:"amount"`
	ClaimedMultiplier float64 `json:"claimed_multiplier"`

	ResponseChan chan CrashCashoutResponse `json:"-"`
}

type CrashCashoutResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Payout     float64 `json:"payout"`
}

// Scheduler runs the crash round state machine: Idle -> Running -> Ended ->
// delay -> Idle, forever, on a single goroutine. Ticks and cashouts are
// handled in the same select, so a cashout is always judged against a fully
// formed multiplier, never one mid-update.
type Scheduler struct {
	fair  *Fair
	hub   Broadcaster
	store RoundStore
	cfg   SchedulerConfig

	cashoutCh chan CrashCashoutRequest
	stopCh    chan struct{}

	// round state, written only by the loop goroutine
	stateMu    sync.RWMutex
	phase      Phase
	roundID    string
	multiplier float64
}

func NewScheduler(fair *Fair, hub Broadcaster, store RoundStore, cfg SchedulerConfig) *Scheduler {
	if cfg.Curve == nil {
		cfg.Curve = defaultCurve
	}
	s := &Scheduler{
		fair:      fair,
		hub:       hub,
		store:     store,
		cfg:       cfg,
		cashoutCh: make(chan CrashCashoutRequest, 1000),
		stopCh:    make(chan struct{}),
	}
	s.phase = PhaseIdle
	s.multiplier = crashMinMultiplier
	return s
}

// Start launches the round loop. Stop ends it after the current select.
func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// Snapshot returns the current phase and the last multiplier actually
// broadcast, for late subscribers.
func (s *Scheduler) Snapshot() RoundSnapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return RoundSnapshot{
		Type:       "status",
		Phase:      s.phase,
		RoundID:    s.roundID,
		Multiplier: s.multiplier,
	}
}

// Cashout submits a claim to the round loop and waits for its verdict. The
// loop alone decides whether the claim beat the crash.
func (s *Scheduler) Cashout(req CrashCashoutRequest) CrashCashoutResponse {
	respChan := make(chan CrashCashoutResponse, 1)
	req.ResponseChan = respChan

	select {
	case s.cashoutCh <- req:
		select {
		case resp := <-respChan:
			return resp
		case <-time.After(cashoutTimeout):
			return CrashCashoutResponse{Message: "cashout timeout"}
		}
	default:
		return CrashCashoutResponse{Message: "cashout queue full"}
	}
}

func (s *Scheduler) setState(phase Phase, roundID string, multiplier float64) {
	s.stateMu.Lock()
	s.phase = phase
	s.roundID = roundID
	s.multiplier = multiplier
	s.stateMu.Unlock()
}

func (s *Scheduler) loop() {
	for {
		select {
		case <-s.stopCh:
			log.Println("[CRASH] Round loop stopped")
			return
		default:
		}

		s.runRound()

		// Inter-round delay, then straight into the next round. Claims that
		// arrive between rounds keep getting judged here, so a stale claim
		// from the ended round is rejected instead of sitting in the queue
		// until the next round's first select.
		delay := time.After(s.cfg.RoundDelay)
	drain:
		for {
			select {
			case <-delay:
				s.setState(PhaseIdle, "", crashMinMultiplier)
				break drain
			case req := <-s.cashoutCh:
				s.handleCashout(req)
			case <-s.stopCh:
				return
			}
		}
	}
}

func (s *Scheduler) runRound() {
	roundID := uuid.New().String()
	nonce := s.fair.NextNonce(1)
	commit := s.fair.CommitHash()

	// The round id is the draw's player seed: it is public, so once the
	// epoch's seed is revealed anyone can recompute this round's crash point.
	crashPoint := CrashPointFromFraction(s.fair.Fraction(roundID, nonce))

	startedAt := time.Now()
	s.setState(PhaseRunning, roundID, crashMinMultiplier)

	log.Printf("[CRASH] Round %s started (commit %s...)", roundID, commit[:16])
	s.hub.Broadcast(RoundSnapshot{
		Type:       "status",
		Phase:      PhaseRunning,
		RoundID:    roundID,
		Multiplier: crashMinMultiplier,
	})

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			elapsed := time.Since(startedAt).Seconds()
			mult := s.cfg.Curve(elapsed)

			if mult >= crashPoint {
				s.setState(PhaseEnded, roundID, crashPoint)
				s.hub.Broadcast(map[string]interface{}{
					"type":       "end",
					"round_id":   roundID,
					"multiplier": crashPoint,
				})
				log.Printf("[CRASH] Round %s ended at %.2fx", roundID, crashPoint)
				s.persistRound(RoundRecord{
					RoundID:    roundID,
					Nonce:      nonce,
					Commit:     commit,
					Multiplier: crashPoint,
					StartedAt:  startedAt,
					EndedAt:    time.Now(),
				})
				return
			}

			s.setState(PhaseRunning, roundID, mult)
			s.hub.Broadcast(map[string]interface{}{
				"type":       "tick",
				"round_id":   roundID,
				"multiplier": mult,
			})

		case req := <-s.cashoutCh:
			s.handleCashout(req)

		case <-s.stopCh:
			return
		}
	}
}

// handleCashout judges a claim against the multiplier actually broadcast so
// far in the current round. The claim comes from the client and is never
// trusted: anything above the high-water broadcast value, below the floor, or
// outside a running round pays nothing.
func (s *Scheduler) handleCashout(req CrashCashoutRequest) {
	resp := CrashCashoutResponse{}
	defer func() {
		if req.ResponseChan != nil {
			req.ResponseChan <- resp
		}
	}()

	if req.Amount <= 0 {
		resp.Message = ErrInvalidBet.Error()
		return
	}

	snap := s.Snapshot()
	if snap.Phase != PhaseRunning {
		resp.Message = "no running round"
		return
	}
	if req.ClaimedMultiplier < crashMinMultiplier || req.ClaimedMultiplier > snap.Multiplier {
		resp.Message = ErrRaceViolation.Error()
		return
	}

	resp.Success = true
	resp.Multiplier = req.ClaimedMultiplier
	resp.Payout = floorCents(req.Amount * req.ClaimedMultiplier * HouseEdgeFactor)
	log.Printf("[CRASH] User %s cashed out at %.2fx (payout %.2f)", req.UserID, req.ClaimedMultiplier, resp.Payout)
}

func (s *Scheduler) persistRound(round RoundRecord) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.store.SaveRound(ctx, round); err != nil {
		log.Printf("[CRASH] Failed to persist round %s: %v", round.RoundID, err)
	}
}

// CrashPointFromFraction maps a uniform draw onto the heavy-tailed crash
// distribution: the bottom edge-fraction crashes instantly at 1.00, the rest
// follows 0.99/(1-u), clamped to [1.00, 1000.00] and truncated to two
// decimals.
func CrashPointFromFraction(u float64) float64 {
	if u < 1-HouseEdgeFactor {
		return crashMinMultiplier
	}
	point := math.Floor(100*HouseEdgeFactor/(1-u)) / 100
	if point < crashMinMultiplier {
		return crashMinMultiplier
	}
	if point > crashMaxMultiplier {
		return crashMaxMultiplier
	}
	return point
}
