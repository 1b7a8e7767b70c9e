package server

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"fairplay/internal/cache"
	"fairplay/internal/database"
	"fairplay/internal/game"
)

type FiberServer struct {
	*fiber.App

	db        database.Service
	cache     cache.Service
	fair      *game.Fair
	boards    *game.BoardStore
	scheduler *game.Scheduler
	hub       *game.Hub
}

func New() *FiberServer {
	db := database.New()

	cacheService := cache.New()
	if cacheService == nil {
		log.Fatal("[SERVER] Redis is required for wallet functionality")
	}

	fair := game.New()
	hub := game.NewHub()
	scheduler := game.NewScheduler(fair, hub, db, game.DefaultSchedulerConfig())

	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader:  "fairplay",
			AppName:       "fairplay",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
			IdleTimeout:   120 * time.Second,
			StrictRouting: false,
		}),

		db:        db,
		cache:     cacheService,
		fair:      fair,
		boards:    game.NewBoardStore(),
		scheduler: scheduler,
		hub:       hub,
	}

	server.App.Use(recover.New())
	server.App.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	go hub.Run()
	scheduler.Start()

	log.Printf("[SERVER] Commitment published: %s", fair.CommitHash())

	return server
}

// Cleanup stops the crash scheduler and closes connections. The HTTP
// listener itself is shut down through the embedded fiber app.
func (s *FiberServer) Cleanup() error {
	log.Println("[SERVER] Shutting down...")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.hub != nil {
		s.hub.Stop()
	}
	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		s.db.Close()
	}

	return nil
}
