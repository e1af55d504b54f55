package main

import (
	"net/http"
)

func (app *App) initHandlers() {
	app.R.Get("/ws", app.handleWebSocket)

	app.R.Post("/auth/signup", app.SignUp)
	app.R.Post("/auth/login", app.Login)
	app.R.Post("/auth/logout", app.Middleware(http.HandlerFunc(app.Logout)))

	app.R.Get("/players", app.Middleware(http.HandlerFunc(app.ListPlayers)))
	app.R.Get("/players/{playerID}", app.Middleware(http.HandlerFunc(app.GetPlayer)))
	app.R.Get("/players/{playerID}/history", app.Middleware(http.HandlerFunc(app.GetPriceHistory)))
	app.R.Post("/players", app.Middleware(http.HandlerFunc(app.CreatePlayer)))
	app.R.Put("/players/{playerID}", app.Middleware(http.HandlerFunc(app.UpdatePlayer)))
	app.R.Delete("/players/{playerID}", app.Middleware(http.HandlerFunc(app.DeletePlayer)))
	app.R.Post("/players/{playerID}/stats", app.Middleware(http.HandlerFunc(app.SubmitStats)))

	app.R.Post("/portfolio/buy", app.Middleware(http.HandlerFunc(app.BuyPlayers)))
	app.R.Post("/portfolio/sell", app.Middleware(http.HandlerFunc(app.SellPlayers)))
	app.R.Get("/portfolio", app.Middleware(http.HandlerFunc(app.GetPortfolio)))
	app.R.Get("/portfolio/transactions", app.Middleware(http.HandlerFunc(app.GetTransactions)))

	app.R.Post("/matchweeks", app.Middleware(http.HandlerFunc(app.CreateMatchweek)))
	app.R.Post("/matchweeks/{weekNumber}/complete", app.Middleware(http.HandlerFunc(app.CompleteMatchweek)))
	app.R.Get("/matchweeks/active", app.Middleware(http.HandlerFunc(app.GetActiveMatchweek)))

	app.R.Get("/leaderboard", app.Middleware(http.HandlerFunc(app.GetLeaderboard)))
	app.R.Get("/leaderboard/rank", app.Middleware(http.HandlerFunc(app.GetUserRank)))

	app.R.Get("/profile", app.Middleware(http.HandlerFunc(app.GetProfile)))

	app.R.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("I am Healthy"))
	})
}
