package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Accept,Authorization,Content-Type",
		AllowCredentials: false, // credentials require explicit origins
		MaxAge:           300,
	}))

	s.App.Get("/health", s.healthHandler)

	api := s.App.Group("/api/v1")

	// Commitment lifecycle
	fair := api.Group("/fair")
	fair.Get("/commitment", s.commitmentHandler)
	fair.Post("/rotate", s.rotateHandler)
	fair.Post("/verify", s.verifyHandler)

	// Crash round
	crash := api.Group("/crash")
	crash.Get("/state", s.crashStateHandler)
	crash.Post("/bet", s.crashBetHandler)
	crash.Post("/cashout", s.crashCashoutHandler)

	// Wallet
	api.Get("/user/:userId/balance", s.getUserBalanceHandler)
	api.Post("/user/:userId/balance", s.setUserBalanceHandler)

	s.RegisterGameRoutes()

	// WebSocket broadcast subscription
	s.App.Get("/ws", websocket.New(s.gameWebSocketHandler))
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	health := fiber.Map{
		"database": s.db.Health(),
		"cache":    s.cache.Health(),
		"game": fiber.Map{
			"status":            "running",
			"commitment":        s.fair.CommitHash(),
			"crash_phase":       s.scheduler.Snapshot().Phase,
			"connected_clients": s.hub.GetClientCount(),
		},
	}
	return c.JSON(health)
}
