package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"fairplay/internal/cache"
	"fairplay/internal/database"
	"fairplay/internal/game"
)

// betRequest is the envelope every discrete-game bet shares. The player seed
// and sequence number are optional: the seed falls back to the documented
// default, the nonce is allocated from the current epoch when absent.
type betRequest struct {
	UserID     string  `json:"user_id"`
	Amount     float64 `json:"amount"`
	PlayerSeed string  `json:"player_seed"`
	Nonce      *int64  `json:"nonce"`
}

func (r *betRequest) seed() string {
	if r.PlayerSeed == "" {
		return game.DefaultPlayerSeed
	}
	return r.PlayerSeed
}

// nonceOf honors an explicit client nonce, otherwise reserves a block of
// draws sized for the game so no later bet can land inside it.
func (s *FiberServer) nonceOf(r *betRequest, draws int64) int64 {
	if r.Nonce != nil {
		return *r.Nonce
	}
	return s.fair.NextNonce(draws)
}

func statusForGameError(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidBet),
		errors.Is(err, game.ErrInvalidParams),
		errors.Is(err, game.ErrStaleBoard),
		errors.Is(err, game.ErrRaceViolation),
		errors.Is(err, cache.ErrInsufficientFunds):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// settleBet runs the shared settlement path: debit the stake, resolve, credit
// the payout, record the wager. The resolver never touches the wallet; it
// only reports the payout this handler applies.
func (s *FiberServer) settleBet(c *fiber.Ctx, gameType string, req betRequest, draws int64, resolve func(playerSeed string, nonce int64) (game.Result, error)) error {
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}
	if req.Amount < game.MinBetAmount || req.Amount > game.MaxBetAmount {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Bet must be between %.2f and %.2f", game.MinBetAmount, game.MaxBetAmount),
		})
	}

	ctx := c.Context()
	balance, err := s.cache.Adjust(ctx, req.UserID, -req.Amount)
	if err != nil {
		if errors.Is(err, cache.ErrInsufficientFunds) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Insufficient balance",
				"balance": balance,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction failed"})
	}

	playerSeed := req.seed()
	nonce := s.nonceOf(&req, draws)

	result, err := resolve(playerSeed, nonce)
	if err != nil {
		// Nothing was drawn for the caller; return the stake.
		if _, rbErr := s.cache.Adjust(ctx, req.UserID, req.Amount); rbErr != nil {
			log.Printf("[GAME] Refund failed for user %s: %v", req.UserID, rbErr)
		}
		return c.Status(statusForGameError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if result.Payout > 0 {
		balance, err = s.cache.Adjust(ctx, req.UserID, result.Payout)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to credit payout"})
		}
	}

	if err := s.db.SaveWager(ctx, database.WagerRecord{
		UserID:     req.UserID,
		GameType:   gameType,
		Amount:     req.Amount,
		Payout:     result.Payout,
		Won:        result.Won,
		PlayerSeed: playerSeed,
		Nonce:      result.Nonce,
		Commit:     s.fair.CommitHash(),
	}); err != nil {
		log.Printf("[GAME] Failed to record %s wager for user %s: %v", gameType, req.UserID, err)
	}

	log.Printf("[GAME] %s: user %s bet %.2f, payout %.2f", gameType, req.UserID, req.Amount, result.Payout)

	return c.JSON(fiber.Map{
		"success": true,
		"won":     result.Won,
		"push":    result.Push,
		"payout":  result.Payout,
		"nonce":   result.Nonce,
		"detail":  result.Detail,
		"balance": balance,
	})
}

// Commitment lifecycle handlers

func (s *FiberServer) commitmentHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"commit_hash": s.fair.CommitHash()})
}

func (s *FiberServer) rotateHandler(c *fiber.Ctx) error {
	revealed, commit := s.fair.Rotate()
	log.Printf("[FAIR] Seed rotated, new commitment: %s", commit)
	return c.JSON(fiber.Map{
		"revealed_seed":   revealed,
		"new_commit_hash": commit,
	})
}

// verifyHandler recomputes a draw from a revealed seed so players can audit
// past outcomes without trusting the server.
func (s *FiberServer) verifyHandler(c *fiber.Ctx) error {
	var req struct {
		ServerSeed string `json:"server_seed"`
		PlayerSeed string `json:"player_seed"`
		Nonce      int64  `json:"nonce"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ServerSeed == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Server seed is required"})
	}
	if req.PlayerSeed == "" {
		req.PlayerSeed = game.DefaultPlayerSeed
	}
	return c.JSON(fiber.Map{
		"fraction":    game.DeriveFraction(req.ServerSeed, req.PlayerSeed, req.Nonce),
		"commit_hash": game.HashCommitment(req.ServerSeed),
	})
}

// Discrete game handlers

func (s *FiberServer) diceBetHandler(c *fiber.Ctx) error {
	var req struct {
		betRequest
		game.DiceParams
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "dice", req.betRequest, 1, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveDice(s.fair, req.Amount, seed, nonce, req.DiceParams)
	})
}

func (s *FiberServer) coinflipBetHandler(c *fiber.Ctx) error {
	var req struct {
		betRequest
		game.CoinflipParams
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "coinflip", req.betRequest, 1, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveCoinflip(s.fair, req.Amount, seed, nonce, req.CoinflipParams)
	})
}

func (s *FiberServer) hiloBetHandler(c *fiber.Ctx) error {
	var req struct {
		betRequest
		game.HiLoParams
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "hilo", req.betRequest, game.HiLoDrawCount, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveHiLo(s.fair, req.Amount, seed, nonce, req.HiLoParams)
	})
}

func (s *FiberServer) blackjackBetHandler(c *fiber.Ctx) error {
	var req betRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "blackjack", req, game.BlackjackMaxDraws, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveBlackjack(s.fair, req.Amount, seed, nonce)
	})
}

func (s *FiberServer) limboBetHandler(c *fiber.Ctx) error {
	var req struct {
		betRequest
		game.LimboParams
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "limbo", req.betRequest, 1, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveLimbo(s.fair, req.Amount, seed, nonce, req.LimboParams)
	})
}

func (s *FiberServer) rouletteBetHandler(c *fiber.Ctx) error {
	var req struct {
		betRequest
		game.RouletteParams
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "roulette", req.betRequest, 1, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveRoulette(s.fair, req.Amount, seed, nonce, req.RouletteParams)
	})
}

func (s *FiberServer) plinkoBetHandler(c *fiber.Ctx) error {
	var req betRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "plinko", req, game.PlinkoRows, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolvePlinko(s.fair, req.Amount, seed, nonce)
	})
}

func (s *FiberServer) kenoBetHandler(c *fiber.Ctx) error {
	var req struct {
		betRequest
		game.KenoParams
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "keno", req.betRequest, game.KenoShuffleDraws, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveKeno(s.fair, req.Amount, seed, nonce, req.KenoParams)
	})
}

func (s *FiberServer) wheelBetHandler(c *fiber.Ctx) error {
	var req betRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return s.settleBet(c, "wheel", req, 1, func(seed string, nonce int64) (game.Result, error) {
		return game.ResolveWheel(s.fair, req.Amount, seed, nonce)
	})
}

// Mines handlers. The board is keyed by user session; creating a new board
// debits the stake, a mine hit forfeits it, and cashout credits the payout.

func (s *FiberServer) minesNewHandler(c *fiber.Ctx) error {
	var req betRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}
	if req.Amount < game.MinBetAmount || req.Amount > game.MaxBetAmount {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Bet must be between %.2f and %.2f", game.MinBetAmount, game.MaxBetAmount),
		})
	}

	balance, err := s.cache.Adjust(c.Context(), req.UserID, -req.Amount)
	if err != nil {
		if errors.Is(err, cache.ErrInsufficientFunds) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient balance", "balance": balance})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction failed"})
	}

	board, err := s.boards.NewBoard(s.fair, req.UserID, req.Amount, req.seed(), s.nonceOf(&req, game.MinesMineCount))
	if err != nil {
		if _, rbErr := s.cache.Adjust(c.Context(), req.UserID, req.Amount); rbErr != nil {
			log.Printf("[MINES] Refund failed for user %s: %v", req.UserID, rbErr)
		}
		return c.Status(statusForGameError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("[MINES] Board %s created for user %s (bet %.2f)", board.ID, req.UserID, req.Amount)

	return c.JSON(fiber.Map{
		"success":  true,
		"board_id": board.ID,
		"nonce":    board.Nonce,
		"balance":  balance,
	})
}

func (s *FiberServer) minesRevealHandler(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
		Cell   int    `json:"cell"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	outcome, err := s.boards.Reveal(req.UserID, req.Cell)
	if err != nil {
		return c.Status(statusForGameError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if outcome.IsMine {
		log.Printf("[MINES] User %s hit a mine at cell %d", req.UserID, req.Cell)
	}

	return c.JSON(fiber.Map{"success": true, "outcome": outcome})
}

func (s *FiberServer) minesCashoutHandler(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	result, err := s.boards.Cashout(req.UserID)
	if err != nil {
		return c.Status(statusForGameError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	balance, err := s.cache.Adjust(c.Context(), req.UserID, result.Payout)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to credit balance"})
	}

	log.Printf("[MINES] User %s cashed out for %.2f", req.UserID, result.Payout)

	return c.JSON(fiber.Map{
		"success": true,
		"payout":  result.Payout,
		"detail":  result.Detail,
		"balance": balance,
	})
}

// Crash round handlers

func (s *FiberServer) crashStateHandler(c *fiber.Ctx) error {
	return c.JSON(s.scheduler.Snapshot())
}

func (s *FiberServer) crashBetHandler(c *fiber.Ctx) error {
	var req betRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}
	if req.Amount < game.MinBetAmount || req.Amount > game.MaxBetAmount {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Bet must be between %.2f and %.2f", game.MinBetAmount, game.MaxBetAmount),
		})
	}

	balance, err := s.cache.Adjust(c.Context(), req.UserID, -req.Amount)
	if err != nil {
		if errors.Is(err, cache.ErrInsufficientFunds) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient balance", "balance": balance})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transaction failed"})
	}

	s.hub.Broadcast(map[string]interface{}{
		"type":    "bet_placed",
		"user_id": req.UserID,
		"amount":  req.Amount,
	})

	return c.JSON(fiber.Map{"success": true, "balance": balance})
}

func (s *FiberServer) crashCashoutHandler(c *fiber.Ctx) error {
	var req game.CrashCashoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	resp := s.scheduler.Cashout(req)
	if !resp.Success {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	balance, err := s.cache.Adjust(c.Context(), req.UserID, resp.Payout)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to credit balance"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"multiplier": resp.Multiplier,
		"payout":     resp.Payout,
		"balance":    balance,
	})
}

// Wallet handlers

func (s *FiberServer) getUserBalanceHandler(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	balance, err := s.cache.Balance(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read balance"})
	}

	return c.JSON(fiber.Map{"user_id": userID, "balance": balance})
}

func (s *FiberServer) setUserBalanceHandler(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User ID is required"})
	}

	var body struct {
		Balance float64 `json:"balance"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := s.cache.SetBalance(c.Context(), userID, body.Balance); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to set balance"})
	}

	return c.JSON(fiber.Map{"user_id": userID, "balance": body.Balance, "message": "Balance updated successfully"})
}

// WebSocket handler

func (s *FiberServer) gameWebSocketHandler(conn *websocket.Conn) {
	userID := conn.Query("user_id", "anonymous")

	log.Printf("[WS] New connection from user: %s", userID)

	// The snapshot sent on register lets a late joiner converge with
	// everyone already watching the round.
	s.hub.RegisterClient(conn, userID, s.scheduler.Snapshot())

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[WS] Read error for user %s: %v", userID, err)
			s.hub.UnregisterClient(conn)
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var clientMsg map[string]interface{}
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			continue
		}
		msgType, ok := clientMsg["type"].(string)
		if !ok {
			continue
		}

		switch msgType {
		case "cashout":
			amount, _ := strconv.ParseFloat(fmt.Sprintf("%v", clientMsg["amount"]), 64)
			claimed, _ := strconv.ParseFloat(fmt.Sprintf("%v", clientMsg["claimed_multiplier"]), 64)

			resp := s.scheduler.Cashout(game.CrashCashoutRequest{
				UserID:            userID,
				Amount:            amount,
				ClaimedMultiplier: claimed,
			})
			if resp.Success {
				if _, err := s.cache.Adjust(context.Background(), userID, resp.Payout); err != nil {
					log.Printf("[WS] Failed to credit cashout for user %s: %v", userID, err)
				}
			}

			respJSON, _ := json.Marshal(resp)
			conn.WriteMessage(websocket.TextMessage, respJSON)

		case "ping":
			pongJSON, _ := json.Marshal(map[string]string{"type": "pong"})
			conn.WriteMessage(websocket.TextMessage, pongJSON)
		}
	}
}
