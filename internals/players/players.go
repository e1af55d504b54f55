// Package players owns the tradable catalog and the admin-facing
// performance reporting path that reprices players.
package players

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/footstock/api-server/internals/cache"
	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/pricing"
	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMissingFields    = errors.New("name, team, position and price are required")
	ErrInvalidPosition  = errors.New("position must be one of GK, DEF, MID, FWD")
	ErrMissingMatchweek = errors.New("matchweek number is required")
	ErrInvalidRating    = errors.New("rating must be between 0 and 10")
	ErrPlayerHeld       = errors.New("player is held by at least one account")
)

type PlayerService struct {
	Store     store.Store
	KV        kvstore.KVStore
	Publisher Publisher
}

func New(st store.Store, kv kvstore.KVStore, pub Publisher) *PlayerService {
	return &PlayerService{
		Store:     st,
		KV:        kv,
		Publisher: pub,
	}
}

type CreatePlayerRequest struct {
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Position string  `json:"position"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

func (s *PlayerService) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	if req.Name == "" || req.Team == "" || req.Position == "" || req.Price <= 0 {
		return nil, ErrMissingFields
	}
	if !models.ValidPosition(req.Position) {
		return nil, ErrInvalidPosition
	}

	player := &models.Player{
		PlayerID:     uuid.New().String(),
		Name:         req.Name,
		Team:         req.Team,
		Position:     req.Position,
		CurrentPrice: req.Price,
		InitialPrice: req.Price,
		ImageURL:     req.ImageURL,
		LastUpdated:  time.Now(),
	}
	if err := s.Store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.recordPricePoint(player.PlayerID, player.CurrentPrice)
	return player, nil
}

type UpdatePlayerRequest struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`
	ImageURL string `json:"image_url"`
}

// UpdatePlayer changes catalog fields only; prices move exclusively
// through performance submissions.
func (s *PlayerService) UpdatePlayer(ctx context.Context, playerID string, req UpdatePlayerRequest) (*models.Player, error) {
	player, err := s.Store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		player.Name = req.Name
	}
	if req.Team != "" {
		player.Team = req.Team
	}
	if req.Position != "" {
		if !models.ValidPosition(req.Position) {
			return nil, ErrInvalidPosition
		}
		player.Position = req.Position
	}
	if req.ImageURL != "" {
		player.ImageURL = req.ImageURL
	}
	player.LastUpdated = time.Now()

	if err := s.Store.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer removes a player from the catalog. Refused while any
// account still holds shares, so holdings never dangle.
func (s *PlayerService) DeletePlayer(ctx context.Context, playerID string) error {
	holders, err := s.Store.CountHoldersOf(ctx, playerID)
	if err != nil {
		return err
	}
	if holders > 0 {
		return ErrPlayerHeld
	}
	err = s.Store.DeletePlayer(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrPlayerNotFound
	}
	return err
}

func (s *PlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return s.Store.ListPlayers(ctx)
}

type PlayerDetails struct {
	models.Player
	Stats []models.PlayerStat `json:"stats"`
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (*PlayerDetails, error) {
	player, err := s.Store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	stats, err := s.Store.ListPlayerStats(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return &PlayerDetails{Player: *player, Stats: stats}, nil
}

type SubmitStatsRequest struct {
	Matchweek     int     `json:"matchweek"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	CleanSheet    bool    `json:"clean_sheet"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
	MinutesPlayed int     `json:"minutes_played"`
	Rating        float64 `json:"rating"`
}

type StatsResult struct {
	Player          *models.Player `json:"player"`
	MatchweekReturn float64        `json:"matchweek_roi"`
	PriceChange     float64        `json:"price_change"`
}

// SubmitStats records one matchweek's performance and reprices the player.
// Resubmitting the same matchweek replaces the stored record; the
// cumulative return is recomputed from the full history so nothing is
// double-counted.
func (s *PlayerService) SubmitStats(ctx context.Context, playerID string, req SubmitStatsRequest) (*StatsResult, error) {
	if req.Matchweek < 1 {
		return nil, ErrMissingMatchweek
	}
	if req.Rating < 0 || req.Rating > 10 {
		return nil, ErrInvalidRating
	}

	var result *StatsResult
	err := s.Store.Atomically(ctx, func(tx store.Store) error {
		player, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		stat := &models.PlayerStat{
			PlayerID:      playerID,
			Matchweek:     req.Matchweek,
			Goals:         req.Goals,
			Assists:       req.Assists,
			CleanSheet:    req.CleanSheet,
			YellowCards:   req.YellowCards,
			RedCards:      req.RedCards,
			MinutesPlayed: req.MinutesPlayed,
			Rating:        req.Rating,
		}
		stat.ROI = pricing.MatchweekReturn(*stat, player.Position)

		if err := tx.UpsertPlayerStat(ctx, stat); err != nil {
			return err
		}

		stats, err := tx.ListPlayerStats(ctx, playerID)
		if err != nil {
			return err
		}
		player.TotalROI = pricing.CumulativeReturn(stats)

		newPrice, changePercent := pricing.NextPrice(player.CurrentPrice, stat.ROI, player.Popularity)
		player.CurrentPrice = newPrice
		player.PriceChangePercent = changePercent
		player.LastUpdated = time.Now()

		if err := tx.SavePlayer(ctx, player); err != nil {
			return err
		}

		result = &StatsResult{
			Player:          player,
			MatchweekReturn: stat.ROI,
			PriceChange:     changePercent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordPricePoint(playerID, result.Player.CurrentPrice)
	s.broadcast(result)
	return result, nil
}

// recordPricePoint appends the quote to the Redis time-series backing the
// price history endpoint. Best effort: Postgres already committed.
func (s *PlayerService) recordPricePoint(playerID string, price float64) {
	if s.KV == nil {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000000-07")
	if err := s.KV.RPush("players_"+playerID, fmt.Sprintf("%s,%.2f", ts, price)); err != nil {
		log.Printf("players: price point for %s not cached: %v", playerID, err)
	}
}

func (s *PlayerService) broadcast(res *StatsResult) {
	if s.Publisher == nil {
		return
	}
	err := s.Publisher.PublishPriceUpdate(PriceUpdate{
		PlayerID:           res.Player.PlayerID,
		CurrentPrice:       res.Player.CurrentPrice,
		PriceChangePercent: res.Player.PriceChangePercent,
		MatchweekReturn:    res.MatchweekReturn,
	})
	if err != nil {
		log.Printf("players: price update for %s not published: %v", res.Player.PlayerID, err)
	}
}

// GetPriceHistory reads the player's quote time-series from Redis, warming
// the cache from Postgres on a miss.
func (s *PlayerService) GetPriceHistory(ctx context.Context, playerID string) ([]string, error) {
	if _, err := s.Store.GetPlayer(ctx, playerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	points, err := s.KV.LRange("players_"+playerID, 0, -1)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return cache.New(s.Store, s.KV).LoadPlayerPriceHistory(ctx, playerID)
	}
	return points, nil
}
