// Package matchweek manages the reporting-period lifecycle. At most one
// matchweek is active system-wide; completing one is terminal and kicks
// off the portfolio revaluation sweep.
package matchweek

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/store"
)

var (
	ErrMissingFields = errors.New("week number, start date and end date are required")
	ErrDuplicateWeek = errors.New("matchweek already exists")
	ErrNotFound      = errors.New("matchweek not found")
	ErrNotActive     = errors.New("matchweek is not active")
)

type MatchweekService struct {
	Store store.Store
}

func New(st store.Store) *MatchweekService {
	return &MatchweekService{Store: st}
}

type CreateMatchweekRequest struct {
	WeekNumber int       `json:"week_number"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// Create opens a new matchweek as the single active one. Every other
// matchweek is deactivated in the same transaction, so the one-active
// invariant holds even against a concurrent create.
func (s *MatchweekService) Create(ctx context.Context, req CreateMatchweekRequest) (*models.Matchweek, error) {
	if req.WeekNumber < 1 || req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, ErrMissingFields
	}

	mw := &models.Matchweek{
		WeekNumber:  req.WeekNumber,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    true,
		IsCompleted: false,
		CreatedAt:   time.Now(),
	}

	err := s.Store.Atomically(ctx, func(tx store.Store) error {
		if _, err := tx.GetMatchweek(ctx, req.WeekNumber); err == nil {
			return ErrDuplicateWeek
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.DeactivateMatchweeks(ctx); err != nil {
			return err
		}
		return tx.CreateMatchweek(ctx, mw)
	})
	if err != nil {
		return nil, err
	}
	return mw, nil
}

// Complete closes the active matchweek. Completed is terminal; the
// matchweek can never become active again. Afterwards every account's
// cached portfolio value is refreshed from current prices.
func (s *MatchweekService) Complete(ctx context.Context, weekNumber int) (*models.Matchweek, error) {
	var mw *models.Matchweek
	err := s.Store.Atomically(ctx, func(tx store.Store) error {
		var err error
		mw, err = tx.GetMatchweek(ctx, weekNumber)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !mw.IsActive {
			return ErrNotActive
		}
		mw.IsActive = false
		mw.IsCompleted = true
		return tx.SaveMatchweek(ctx, mw)
	})
	if err != nil {
		return nil, err
	}

	s.revalueAllPortfolios(ctx)
	return mw, nil
}

func (s *MatchweekService) GetActive(ctx context.Context) (*models.Matchweek, error) {
	mw, err := s.Store.GetActiveMatchweek(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return mw, err
}

// revalueAllPortfolios refreshes each account's cached portfolio value
// from current quotes. Each account commits on its own: a failure leaves
// that one account stale, which is fine because live reads never trust
// the cache.
func (s *MatchweekService) revalueAllPortfolios(ctx context.Context) {
	accounts, err := s.Store.ListAccounts(ctx)
	if err != nil {
		log.Printf("matchweek: revaluation sweep skipped: %v", err)
		return
	}

	for _, account := range accounts {
		if err := s.revaluePortfolio(ctx, account); err != nil {
			log.Printf("matchweek: revaluation for user %d failed: %v", account.UserID, err)
		}
	}
}

func (s *MatchweekService) revaluePortfolio(ctx context.Context, account models.Account) error {
	return s.Store.Atomically(ctx, func(tx store.Store) error {
		holdings, err := tx.ListHoldings(ctx, account.UserID)
		if err != nil {
			return err
		}
		var value float64
		for _, h := range holdings {
			player, err := tx.GetPlayer(ctx, h.PlayerID)
			if err != nil {
				return err
			}
			value += player.CurrentPrice * float64(h.Quantity)
		}
		account.PortfolioValue = value
		account.LastUpdated = time.Now()
		return tx.SaveAccount(ctx, &account)
	})
}
