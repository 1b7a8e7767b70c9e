package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"fairplay/internal/game"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
)

// Service is the postgres-backed audit log: finished crash rounds and
// settled wagers, plus connection health.
type Service interface {
	Health() map[string]string
	Close() error

	SaveRound(ctx context.Context, round game.RoundRecord) error
	SaveWager(ctx context.Context, wager WagerRecord) error
}

// WagerRecord is one settled discrete-game bet.
type WagerRecord struct {
	UserID     string
	GameType   string
	Amount     float64
	Payout     float64
	Won        bool
	PlayerSeed string
	Nonce      int64
	Commit     string
}

type service struct {
	db *sql.DB
}

var (
	database   = os.Getenv("FAIRPLAY_DB_DATABASE")
	password   = os.Getenv("FAIRPLAY_DB_PASSWORD")
	username   = os.Getenv("FAIRPLAY_DB_USERNAME")
	port       = os.Getenv("FAIRPLAY_DB_PORT")
	host       = os.Getenv("FAIRPLAY_DB_HOST")
	schema     = os.Getenv("FAIRPLAY_DB_SCHEMA")
	dbInstance *service
)

func New() Service {
	if dbInstance != nil {
		return dbInstance
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		username, password, host, port, database, schema)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatalf("[DB] Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	dbInstance = &service{db: db}
	return dbInstance
}

func (s *service) SaveRound(ctx context.Context, round game.RoundRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO crash_rounds (round_id, nonce, commit_hash, multiplier, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		round.RoundID, round.Nonce, round.Commit, round.Multiplier, round.StartedAt, round.EndedAt)
	if err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	return nil
}

func (s *service) SaveWager(ctx context.Context, wager WagerRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wagers (user_id, game_type, amount, payout, won, player_seed, nonce, commit_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		wager.UserID, wager.GameType, wager.Amount, wager.Payout, wager.Won,
		wager.PlayerSeed, wager.Nonce, wager.Commit, time.Now())
	if err != nil {
		return fmt.Errorf("save wager: %w", err)
	}
	return nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	return stats
}

func (s *service) Close() error {
	log.Printf("[DB] Disconnected from database: %s", database)
	return s.db.Close()
}
