package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/spf13/viper"

	"github.com/footstock/api-server/internals/auth"
	"github.com/footstock/api-server/internals/cache"
	"github.com/footstock/api-server/internals/leaderboard"
	"github.com/footstock/api-server/internals/matchweek"
	"github.com/footstock/api-server/internals/players"
	"github.com/footstock/api-server/internals/portfolio"
	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/conf"
	"github.com/footstock/api-server/pkg/kvstore"
)

type App struct {
	Store    store.Store
	KVStore  kvstore.KVStore
	R        *chi.Mux
	WS       map[*websocket.Conn]bool
	ClientsM sync.Mutex
	Ch       *amqp.Channel
	Cfg      *viper.Viper

	Auth        *auth.AuthService
	Players     *players.PlayerService
	Portfolio   *portfolio.PortfolioService
	Matchweeks  *matchweek.MatchweekService
	Leaderboard *leaderboard.LeaderboardService
	Cache       *cache.CacheService
}

func main() {
	seed := flag.Bool("seed", false, "seed the player catalog and exit")
	flag.Parse()

	cfg := conf.Config(".")

	conn, err := amqp.Dial(cfg.GetString("amqp.url"))
	failOnError(err, "Failed to connect to RabbitMQ")
	defer conn.Close()

	ch, err := conn.Channel()
	failOnError(err, "Failed to open a channel")
	defer ch.Close()

	app := &App{
		WS:  make(map[*websocket.Conn]bool),
		Ch:  ch,
		Cfg: cfg,
	}

	failOnError(app.initDB(), "Failed to connect to Postgres")
	app.initKVStore()
	failOnError(app.initServices(), "Failed to initialize services")

	if *seed {
		failOnError(app.Players.Seed(context.Background()), "Failed to seed players")
		return
	}

	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	app.R = r

	app.initHandlers()
	go app.consumePriceUpdates()

	addr := cfg.GetString("server.addr")
	log.Printf("api-server listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Panicf("server stopped: %s", err)
	}
}
