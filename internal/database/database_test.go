package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"fairplay/internal/game"
)

func mustStartPostgresContainer() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "fairplay_test"
		dbPwd  = "password"
		dbUser = "user"
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	database = dbName
	password = dbPwd
	username = dbUser
	schema = "public"

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	host = dbHost
	port = dbPort.Port()

	return dbContainer.Terminate, err
}

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_INTEGRATION") != "" {
		os.Exit(0)
	}

	if os.Getenv("CI") == "" && !isDockerAvailable() {
		os.Exit(0)
	}

	teardown, err := mustStartPostgresContainer()
	if err != nil {
		os.Exit(0)
	}

	if err := applySchema(); err != nil {
		if teardown != nil {
			teardown(context.Background())
		}
		os.Exit(1)
	}

	code := m.Run()

	if teardown != nil {
		teardown(context.Background())
	}

	os.Exit(code)
}

func isDockerAvailable() (ok bool) {
	// testcontainers panics (rather than returning an error) when no
	// Docker host can be found; treat that as "not available".
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.DaemonHost(ctx)
	return err == nil
}

// applySchema creates the audit tables in the fresh container, the same
// shape the migrations produce.
func applySchema() error {
	srv := New().(*service)
	_, err := srv.db.Exec(`
		CREATE TABLE IF NOT EXISTS crash_rounds (
			id          BIGSERIAL PRIMARY KEY,
			round_id    TEXT NOT NULL UNIQUE,
			nonce       BIGINT NOT NULL,
			commit_hash TEXT NOT NULL,
			multiplier  NUMERIC(10, 2) NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			ended_at    TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS wagers (
			id          BIGSERIAL PRIMARY KEY,
			user_id     TEXT NOT NULL,
			game_type   TEXT NOT NULL,
			amount      NUMERIC(12, 2) NOT NULL,
			payout      NUMERIC(12, 2) NOT NULL,
			won         BOOLEAN NOT NULL,
			player_seed TEXT NOT NULL,
			nonce       BIGINT NOT NULL,
			commit_hash TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func TestNew(t *testing.T) {
	srv := New()
	if srv == nil {
		t.Fatal("New() returned nil")
	}
}

func TestHealth(t *testing.T) {
	srv := New()

	stats := srv.Health()

	if stats["status"] != "up" {
		t.Fatalf("expected status to be up, got %s", stats["status"])
	}

	if _, ok := stats["error"]; ok {
		t.Fatalf("expected error not to be present")
	}

	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}

func TestSaveRound(t *testing.T) {
	srv := New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	round := game.RoundRecord{
		RoundID:    "round-save-test",
		Nonce:      7,
		Commit:     "deadbeef",
		Multiplier: 2.41,
		StartedAt:  time.Now().Add(-3 * time.Second),
		EndedAt:    time.Now(),
	}
	if err := srv.SaveRound(ctx, round); err != nil {
		t.Fatalf("SaveRound() error = %v", err)
	}

	// The round id is unique; a replayed insert must fail.
	if err := srv.SaveRound(ctx, round); err == nil {
		t.Error("SaveRound() accepted a duplicate round id")
	}

	var multiplier float64
	row := srv.(*service).db.QueryRowContext(ctx,
		"SELECT multiplier FROM crash_rounds WHERE round_id = $1", round.RoundID)
	if err := row.Scan(&multiplier); err != nil {
		t.Fatalf("reading back the round: %v", err)
	}
	if multiplier != 2.41 {
		t.Errorf("stored multiplier = %v, want 2.41", multiplier)
	}
}

func TestSaveWager(t *testing.T) {
	srv := New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wager := WagerRecord{
		UserID:     "user-save-test",
		GameType:   "dice",
		Amount:     100,
		Payout:     198,
		Won:        true,
		PlayerSeed: "default",
		Nonce:      3,
		Commit:     "deadbeef",
	}
	if err := srv.SaveWager(ctx, wager); err != nil {
		t.Fatalf("SaveWager() error = %v", err)
	}

	var won bool
	var payout float64
	row := srv.(*service).db.QueryRowContext(ctx,
		"SELECT won, payout FROM wagers WHERE user_id = $1 AND game_type = $2",
		wager.UserID, wager.GameType)
	if err := row.Scan(&won, &payout); err != nil {
		t.Fatalf("reading back the wager: %v", err)
	}
	if !won || payout != 198 {
		t.Errorf("stored wager = won:%v payout:%v, want won:true payout:198", won, payout)
	}
}

func TestClose(t *testing.T) {
	srv := New()

	if srv.Close() != nil {
		t.Fatalf("expected Close() to return nil")
	}
}
