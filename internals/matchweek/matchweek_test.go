package matchweek

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/store"
)

func newTestService(t *testing.T) (*MatchweekService, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	return New(ms), ms
}

func createWeek(t *testing.T, svc *MatchweekService, week int) *models.Matchweek {
	t.Helper()
	mw, err := svc.Create(context.Background(), CreateMatchweekRequest{
		WeekNumber: week,
		StartDate:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*week),
		EndDate:    time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*week),
	})
	if err != nil {
		t.Fatalf("create week %d: %v", week, err)
	}
	return mw
}

func TestCreateDeactivatesPrevious(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	createWeek(t, svc, 1)
	createWeek(t, svc, 2)

	active, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active.WeekNumber != 2 {
		t.Errorf("active week = %d, want 2", active.WeekNumber)
	}

	prev, err := ms.GetMatchweek(ctx, 1)
	if err != nil {
		t.Fatalf("get week 1: %v", err)
	}
	if prev.IsActive {
		t.Error("week 1 still active after week 2 opened")
	}
	if prev.IsCompleted {
		t.Error("week 1 marked completed by deactivation")
	}
}

func TestCreateRejectsDuplicateWeek(t *testing.T) {
	svc, _ := newTestService(t)

	createWeek(t, svc, 1)
	_, err := svc.Create(context.Background(), CreateMatchweekRequest{
		WeekNumber: 1,
		StartDate:  time.Now(),
		EndDate:    time.Now().AddDate(0, 0, 7),
	})
	if !errors.Is(err, ErrDuplicateWeek) {
		t.Errorf("err = %v, want ErrDuplicateWeek", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateMatchweekRequest{WeekNumber: 1})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing dates: err = %v, want ErrMissingFields", err)
	}
}

func TestCompleteIsTerminal(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	createWeek(t, svc, 1)
	mw, err := svc.Complete(ctx, 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if mw.IsActive || !mw.IsCompleted {
		t.Errorf("completed week state = %+v", mw)
	}

	// A completed week cannot be completed again.
	if _, err := svc.Complete(ctx, 1); !errors.Is(err, ErrNotActive) {
		t.Errorf("second complete: err = %v, want ErrNotActive", err)
	}

	stored, _ := ms.GetMatchweek(ctx, 1)
	if stored.IsActive || !stored.IsCompleted {
		t.Errorf("stored state flipped back: %+v", stored)
	}
}

func TestCompleteRequiresActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createWeek(t, svc, 1)
	createWeek(t, svc, 2) // deactivates week 1 without completing it

	if _, err := svc.Complete(ctx, 1); !errors.Is(err, ErrNotActive) {
		t.Errorf("complete inactive week: err = %v, want ErrNotActive", err)
	}
	if _, err := svc.Complete(ctx, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("complete unknown week: err = %v, want ErrNotFound", err)
	}
}

func TestGetActiveWithNoneOpen(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetActive(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	createWeek(t, svc, 1)
	if _, err := svc.Complete(ctx, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.GetActive(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("after completion: err = %v, want ErrNotFound", err)
	}
}

func TestCompleteRefreshesPortfolioValues(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	if err := ms.CreateAccount(ctx, &models.Account{UserID: 1, Balance: 500}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := ms.CreatePlayer(ctx, &models.Player{
		PlayerID: "p1", Name: "P1", Team: "T", Position: models.PositionFWD,
		CurrentPrice: 120, InitialPrice: 100, LastUpdated: time.Now(),
	}); err != nil {
		t.Fatalf("seed player: %v", err)
	}
	if err := ms.SaveHolding(ctx, &models.Holding{
		UserID: 1, PlayerID: "p1", Quantity: 3, PurchasePrice: 100, PurchasedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed holding: %v", err)
	}

	createWeek(t, svc, 1)
	if _, err := svc.Complete(ctx, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}

	account, err := ms.GetAccount(ctx, 1)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if account.PortfolioValue != 360 {
		t.Errorf("portfolio value = %v, want 360 (3 × 120)", account.PortfolioValue)
	}
}
