// Package leaderboard ranks accounts by total wealth. Standings are
// computed from live quotes on every call and never persisted.
package leaderboard

import (
	"context"
	"errors"
	"sort"

	"github.com/footstock/api-server/internals/store"
)

var ErrUserNotRanked = errors.New("user has no account")

type LeaderboardService struct {
	Store store.Store
}

func New(st store.Store) *LeaderboardService {
	return &LeaderboardService{Store: st}
}

type Entry struct {
	Rank           int     `json:"rank"`
	UserID         int     `json:"user_id"`
	UserName       string  `json:"user_name"`
	Balance        float64 `json:"balance"`
	PortfolioValue float64 `json:"portfolio_value"`
	TotalWealth    float64 `json:"total_wealth"`
	TotalInvested  float64 `json:"total_invested"`
	TotalROI       float64 `json:"total_roi"`
}

// GetLeaderboard returns the top accounts ordered by total wealth.
// limit <= 0 returns the full board. Ties keep account-id order, so
// repeated calls against unchanged state return identical standings.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	entries, err := s.standings(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetUserRank returns the caller's row from the full standings.
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID int) (*Entry, error) {
	entries, err := s.standings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].UserID == userID {
			return &entries[i], nil
		}
	}
	return nil, ErrUserNotRanked
}

func (s *LeaderboardService) standings(ctx context.Context) ([]Entry, error) {
	accounts, err := s.Store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	// One quote lookup per distinct player across the board.
	prices := make(map[string]float64)

	entries := make([]Entry, 0, len(accounts))
	for _, account := range accounts {
		holdings, err := s.Store.ListHoldings(ctx, account.UserID)
		if err != nil {
			return nil, err
		}

		var portfolioValue float64
		for _, h := range holdings {
			price, ok := prices[h.PlayerID]
			if !ok {
				player, err := s.Store.GetPlayer(ctx, h.PlayerID)
				if err != nil {
					return nil, err
				}
				price = player.CurrentPrice
				prices[h.PlayerID] = price
			}
			portfolioValue += price * float64(h.Quantity)
		}

		entry := Entry{
			UserID:         account.UserID,
			Balance:        account.Balance,
			PortfolioValue: portfolioValue,
			TotalWealth:    account.Balance + portfolioValue,
			TotalInvested:  account.TotalInvested,
		}
		if account.TotalInvested > 0 {
			entry.TotalROI = (portfolioValue - account.TotalInvested) / account.TotalInvested * 100
		}
		if user, err := s.Store.GetUser(ctx, account.UserID); err == nil {
			entry.UserName = user.UserName
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalWealth > entries[j].TotalWealth
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
