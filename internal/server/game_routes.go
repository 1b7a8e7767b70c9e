package server

// RegisterGameRoutes registers the bet endpoints for the discrete games.
func (s *FiberServer) RegisterGameRoutes() {
	api := s.App.Group("/api/v1")

	api.Post("/dice/bet", s.diceBetHandler)
	api.Post("/coinflip/bet", s.coinflipBetHandler)
	api.Post("/hilo/bet", s.hiloBetHandler)
	api.Post("/blackjack/bet", s.blackjackBetHandler)
	api.Post("/limbo/bet", s.limboBetHandler)
	api.Post("/roulette/bet", s.rouletteBetHandler)
	api.Post("/plinko/bet", s.plinkoBetHandler)
	api.Post("/keno/bet", s.kenoBetHandler)
	api.Post("/wheel/bet", s.wheelBetHandler)

	// Mines is stateful: board creation, reveals, cashout
	mines := api.Group("/mines")
	mines.Post("/new", s.minesNewHandler)
	mines.Post("/reveal", s.minesRevealHandler)
	mines.Post("/cashout", s.minesCashoutHandler)
}
