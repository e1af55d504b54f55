package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/footstock/api-server/internals/auth"
	"github.com/footstock/api-server/internals/cache"
	"github.com/footstock/api-server/internals/leaderboard"
	"github.com/footstock/api-server/internals/matchweek"
	"github.com/footstock/api-server/internals/players"
	"github.com/footstock/api-server/internals/portfolio"
	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

func failOnError(err error, msg string) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}

func (app *App) initDB() error {
	db, err := gorm.Open(postgres.Open(app.Cfg.GetString("db.dsn")), &gorm.Config{})
	if err != nil {
		return err
	}

	pg := store.NewPostgresStore(db)
	if err := pg.Migrate(); err != nil {
		return err
	}
	app.Store = pg
	return nil
}

func (app *App) initKVStore() {
	app.KVStore = kvstore.NewRedis(
		app.Cfg.GetString("redis.addr"),
		app.Cfg.GetString("redis.password"),
		app.Cfg.GetInt("redis.db"),
	)
}

func (app *App) initServices() error {
	publisher, err := players.NewAMQPPublisher(app.Ch)
	if err != nil {
		return err
	}

	app.Auth = auth.New(app.Store, app.KVStore, app.Cfg.GetString("jwt.secret"))
	app.Players = players.New(app.Store, app.KVStore, publisher)
	app.Portfolio = portfolio.New(app.Store, app.KVStore)
	app.Matchweeks = matchweek.New(app.Store)
	app.Leaderboard = leaderboard.New(app.Store)
	app.Cache = cache.New(app.Store, app.KVStore)
	return nil
}
