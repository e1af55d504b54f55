// Package portfolio settles buy and sell orders against the current
// quoted price. Every trade commits its five-way effect set (balance,
// holding, invested total, popularity, transaction record) atomically
// through the store.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrInsufficientHoldings = errors.New("insufficient shares to sell")
	ErrAccountNotFound      = errors.New("account not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrHoldingNotFound      = errors.New("player not in portfolio")
)

type PortfolioService struct {
	Store store.Store
	KV    kvstore.KVStore
}

func New(st store.Store, kv kvstore.KVStore) *PortfolioService {
	return &PortfolioService{
		Store: st,
		KV:    kv,
	}
}

// TradeResult is what a settled trade reports back to the caller.
type TradeResult struct {
	Type          string  `json:"type"`
	PlayerID      string  `json:"player_id"`
	Quantity      int     `json:"quantity"`
	PricePerUnit  float64 `json:"price_per_unit"`
	TotalAmount   float64 `json:"total_amount"`
	Balance       float64 `json:"balance"`
	Profit        float64 `json:"profit,omitempty"`
	ProfitPercent float64 `json:"profit_percent,omitempty"`
}

// Buy settles a purchase of quantity shares at the player's current price.
// A repeat purchase merges into the existing holding at the weighted
// average purchase price.
func (ps *PortfolioService) Buy(ctx context.Context, userID int, playerID string, quantity int) (*TradeResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var result *TradeResult
	err := ps.Store.Atomically(ctx, func(tx store.Store) error {
		account, err := tx.GetAccount(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		player, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}

		totalCost := player.CurrentPrice * float64(quantity)
		if account.Balance < totalCost {
			return ErrInsufficientFunds
		}

		balanceBefore := account.Balance
		account.Balance -= totalCost
		account.TotalInvested += totalCost
		account.LastUpdated = time.Now()
		if err := tx.SaveAccount(ctx, account); err != nil {
			return err
		}

		now := time.Now()
		holding, err := tx.GetHolding(ctx, userID, playerID)
		newHolding := false
		switch {
		case err == nil:
			// Merge at the weighted average across all buys.
			newQty := holding.Quantity + quantity
			totalInvestment := holding.PurchasePrice*float64(holding.Quantity) + totalCost
			holding.PurchasePrice = totalInvestment / float64(newQty)
			holding.Quantity = newQty
			holding.PurchasedAt = now
		case errors.Is(err, store.ErrNotFound):
			newHolding = true
			holding = &models.Holding{
				UserID:        userID,
				PlayerID:      playerID,
				Quantity:      quantity,
				PurchasePrice: player.CurrentPrice,
				PurchasedAt:   now,
			}
		default:
			return err
		}
		if err := tx.SaveHolding(ctx, holding); err != nil {
			return err
		}

		if newHolding {
			if err := tx.AdjustPopularity(ctx, playerID, 1); err != nil {
				return err
			}
		}

		if err := tx.AppendTransaction(ctx, &models.Transaction{
			TxnID:         uuid.New().String(),
			UserID:        userID,
			PlayerID:      playerID,
			Type:          models.TxnBuy,
			Quantity:      quantity,
			PricePerUnit:  player.CurrentPrice,
			TotalAmount:   totalCost,
			BalanceBefore: balanceBefore,
			BalanceAfter:  account.Balance,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		result = &TradeResult{
			Type:         models.TxnBuy,
			PlayerID:     playerID,
			Quantity:     quantity,
			PricePerUnit: player.CurrentPrice,
			TotalAmount:  totalCost,
			Balance:      account.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.refreshPurseCache(userID, result.Balance)
	return result, nil
}

// Sell settles a sale at the current price. The cost basis per share is
// untouched by partial sells; only the quantity shrinks, and the invested
// total drops by the average basis of the lot sold.
func (ps *PortfolioService) Sell(ctx context.Context, userID int, playerID string, quantity int) (*TradeResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var result *TradeResult
	err := ps.Store.Atomically(ctx, func(tx store.Store) error {
		account, err := tx.GetAccount(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		player, err := tx.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPlayerNotFound
			}
			return err
		}
		holding, err := tx.GetHolding(ctx, userID, playerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrHoldingNotFound
			}
			return err
		}
		if holding.Quantity < quantity {
			return ErrInsufficientHoldings
		}

		proceeds := player.CurrentPrice * float64(quantity)
		investedPortion := holding.PurchasePrice * float64(quantity)

		balanceBefore := account.Balance
		account.Balance += proceeds
		account.TotalInvested -= investedPortion
		account.LastUpdated = time.Now()
		if err := tx.SaveAccount(ctx, account); err != nil {
			return err
		}

		removed := false
		if holding.Quantity == quantity {
			if err := tx.DeleteHolding(ctx, userID, playerID); err != nil {
				return err
			}
			removed = true
		} else {
			holding.Quantity -= quantity
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
		}

		if removed {
			if err := tx.AdjustPopularity(ctx, playerID, -1); err != nil {
				return err
			}
		}

		if err := tx.AppendTransaction(ctx, &models.Transaction{
			TxnID:         uuid.New().String(),
			UserID:        userID,
			PlayerID:      playerID,
			Type:          models.TxnSell,
			Quantity:      quantity,
			PricePerUnit:  player.CurrentPrice,
			TotalAmount:   proceeds,
			BalanceBefore: balanceBefore,
			BalanceAfter:  account.Balance,
			CreatedAt:     time.Now(),
		}); err != nil {
			return err
		}

		profit := proceeds - investedPortion
		result = &TradeResult{
			Type:          models.TxnSell,
			PlayerID:      playerID,
			Quantity:      quantity,
			PricePerUnit:  player.CurrentPrice,
			TotalAmount:   proceeds,
			Balance:       account.Balance,
			Profit:        profit,
			ProfitPercent: profit / investedPortion * 100,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.refreshPurseCache(userID, result.Balance)
	return result, nil
}

// refreshPurseCache mirrors the committed balance into Redis so the read
// paths that go through the cache see the settled value. Best effort: the
// store has already committed.
func (ps *PortfolioService) refreshPurseCache(userID int, balance float64) {
	if ps.KV == nil {
		return
	}
	_ = ps.KV.Set("purse_"+strconv.Itoa(userID), fmt.Sprintf("%.2f", balance))
}

// HoldingDetail is one portfolio row joined with the live quote.
type HoldingDetail struct {
	PlayerID      string    `json:"player_id"`
	PlayerName    string    `json:"player_name"`
	Team          string    `json:"team"`
	Position      string    `json:"position"`
	Quantity      int       `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	CurrentPrice  float64   `json:"current_price"`
	CurrentValue  float64   `json:"current_value"`
	ROI           float64   `json:"roi"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

type DetailedPortfolio struct {
	Balance       float64         `json:"balance"`
	TotalInvested float64         `json:"total_invested"`
	TotalValue    float64         `json:"total_value"`
	TotalROI      float64         `json:"total_roi"`
	Holdings      []HoldingDetail `json:"holdings"`
}

// GetDetailedPortfolio computes the live view of an account: every holding
// priced at the current quote, never from the cached portfolio value.
func (ps *PortfolioService) GetDetailedPortfolio(ctx context.Context, userID int) (*DetailedPortfolio, error) {
	account, err := ps.Store.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	holdings, err := ps.Store.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	detailed := &DetailedPortfolio{
		Balance:       account.Balance,
		TotalInvested: account.TotalInvested,
		Holdings:      make([]HoldingDetail, 0, len(holdings)),
	}

	for _, h := range holdings {
		player, err := ps.Store.GetPlayer(ctx, h.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("holding %s: %w", h.PlayerID, err)
		}
		currentValue := player.CurrentPrice * float64(h.Quantity)
		invested := h.PurchasePrice * float64(h.Quantity)
		roi := 0.0
		if invested > 0 {
			roi = (currentValue - invested) / invested * 100
		}
		detailed.TotalValue += currentValue
		detailed.Holdings = append(detailed.Holdings, HoldingDetail{
			PlayerID:      h.PlayerID,
			PlayerName:    player.Name,
			Team:          player.Team,
			Position:      player.Position,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			CurrentPrice:  player.CurrentPrice,
			CurrentValue:  currentValue,
			ROI:           roi,
			PurchasedAt:   h.PurchasedAt,
		})
	}

	if account.TotalInvested > 0 {
		detailed.TotalROI = (detailed.TotalValue - account.TotalInvested) / account.TotalInvested * 100
	}

	return detailed, nil
}

// GetTransactions returns the account's settled trades, most recent first.
func (ps *PortfolioService) GetTransactions(ctx context.Context, userID int, limit int) ([]models.Transaction, error) {
	return ps.Store.ListTransactions(ctx, userID, limit)
}
