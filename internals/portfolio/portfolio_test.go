package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/store"
)

func newTestService(t *testing.T) (*PortfolioService, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	return New(ms, nil), ms
}

func seedAccount(t *testing.T, ms *store.MemoryStore, userID int, balance float64) {
	t.Helper()
	err := ms.CreateAccount(context.Background(), &models.Account{
		UserID:      userID,
		Balance:     balance,
		LastUpdated: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func seedPlayer(t *testing.T, ms *store.MemoryStore, playerID string, price float64) {
	t.Helper()
	err := ms.CreatePlayer(context.Background(), &models.Player{
		PlayerID:     playerID,
		Name:         "Player " + playerID,
		Team:         "FC Test",
		Position:     models.PositionMID,
		CurrentPrice: price,
		InitialPrice: price,
		LastUpdated:  time.Now(),
	})
	if err != nil {
		t.Fatalf("seed player: %v", err)
	}
}

func repricePlayer(t *testing.T, ms *store.MemoryStore, playerID string, price float64) {
	t.Helper()
	ctx := context.Background()
	p, err := ms.GetPlayer(ctx, playerID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	p.CurrentPrice = price
	if err := ms.SavePlayer(ctx, p); err != nil {
		t.Fatalf("reprice player: %v", err)
	}
}

func TestBuyCreatesHoldingAndDebitsBalance(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	res, err := ps.Buy(ctx, 1, "p1", 5)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if res.TotalAmount != 500 {
		t.Errorf("total = %v, want 500", res.TotalAmount)
	}
	if res.Balance != 500 {
		t.Errorf("balance = %v, want 500", res.Balance)
	}

	h, err := ms.GetHolding(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("holding missing: %v", err)
	}
	if h.Quantity != 5 || h.PurchasePrice != 100 {
		t.Errorf("holding = %d @ %v, want 5 @ 100", h.Quantity, h.PurchasePrice)
	}

	a, _ := ms.GetAccount(ctx, 1)
	if a.TotalInvested != 500 {
		t.Errorf("total invested = %v, want 500", a.TotalInvested)
	}
	p, _ := ms.GetPlayer(ctx, "p1")
	if p.Popularity != 1 {
		t.Errorf("popularity = %d, want 1", p.Popularity)
	}
}

func TestBuyMergesAtWeightedAverage(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 10000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Buy(ctx, 1, "p1", 10); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	repricePlayer(t, ms, "p1", 200)
	if _, err := ps.Buy(ctx, 1, "p1", 10); err != nil {
		t.Fatalf("second buy: %v", err)
	}

	h, err := ms.GetHolding(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("holding: %v", err)
	}
	if h.Quantity != 20 {
		t.Errorf("quantity = %d, want 20", h.Quantity)
	}
	if h.PurchasePrice != 150 {
		t.Errorf("purchase price = %v, want 150", h.PurchasePrice)
	}

	// Popularity counts distinct holders, not buys.
	p, _ := ms.GetPlayer(ctx, "p1")
	if p.Popularity != 1 {
		t.Errorf("popularity = %d, want 1", p.Popularity)
	}
}

func TestBuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 100)
	seedPlayer(t, ms, "p1", 101)

	_, err := ps.Buy(ctx, 1, "p1", 1)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	a, _ := ms.GetAccount(ctx, 1)
	if a.Balance != 100 || a.TotalInvested != 0 {
		t.Errorf("account mutated: balance %v invested %v", a.Balance, a.TotalInvested)
	}
	if _, err := ms.GetHolding(ctx, 1, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unexpected holding after failed buy")
	}
	if txns, _ := ms.ListTransactions(ctx, 1, 0); len(txns) != 0 {
		t.Errorf("transaction logged for failed buy")
	}
}

func TestBuyValidation(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Buy(ctx, 1, "p1", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("quantity 0: err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := ps.Buy(ctx, 1, "ghost", 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player: err = %v, want ErrPlayerNotFound", err)
	}
	if _, err := ps.Buy(ctx, 42, "p1", 1); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("unknown account: err = %v, want ErrAccountNotFound", err)
	}
}

func TestSellRoundTripIsNeutral(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Buy(ctx, 1, "p1", 7); err != nil {
		t.Fatalf("buy: %v", err)
	}
	res, err := ps.Sell(ctx, 1, "p1", 7)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if res.Balance != 1000 {
		t.Errorf("balance = %v, want 1000", res.Balance)
	}
	if res.Profit != 0 {
		t.Errorf("profit = %v, want 0", res.Profit)
	}

	a, _ := ms.GetAccount(ctx, 1)
	if a.TotalInvested != 0 {
		t.Errorf("total invested = %v, want 0", a.TotalInvested)
	}
	if _, err := ms.GetHolding(ctx, 1, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("holding should be removed after full sell")
	}
	p, _ := ms.GetPlayer(ctx, "p1")
	if p.Popularity != 0 {
		t.Errorf("popularity = %d, want 0", p.Popularity)
	}
}

func TestPartialSellKeepsCostBasis(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 10000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Buy(ctx, 1, "p1", 10); err != nil {
		t.Fatalf("buy: %v", err)
	}
	repricePlayer(t, ms, "p1", 150)

	res, err := ps.Sell(ctx, 1, "p1", 4)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	// 4 shares at 150 against a 100 basis.
	if res.TotalAmount != 600 {
		t.Errorf("proceeds = %v, want 600", res.TotalAmount)
	}
	if res.Profit != 200 {
		t.Errorf("profit = %v, want 200", res.Profit)
	}
	if res.ProfitPercent != 50 {
		t.Errorf("profit percent = %v, want 50", res.ProfitPercent)
	}

	h, err := ms.GetHolding(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("holding: %v", err)
	}
	if h.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", h.Quantity)
	}
	if h.PurchasePrice != 100 {
		t.Errorf("purchase price changed on sell: %v", h.PurchasePrice)
	}

	a, _ := ms.GetAccount(ctx, 1)
	if a.TotalInvested != 600 {
		t.Errorf("total invested = %v, want 600", a.TotalInvested)
	}
}

func TestSellRejections(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Sell(ctx, 1, "p1", 1); !errors.Is(err, ErrHoldingNotFound) {
		t.Errorf("no holding: err = %v, want ErrHoldingNotFound", err)
	}

	if _, err := ps.Buy(ctx, 1, "p1", 2); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := ps.Sell(ctx, 1, "p1", 3); !errors.Is(err, ErrInsufficientHoldings) {
		t.Errorf("oversell: err = %v, want ErrInsufficientHoldings", err)
	}

	// Oversell must not have touched anything.
	a, _ := ms.GetAccount(ctx, 1)
	if a.Balance != 800 {
		t.Errorf("balance = %v, want 800", a.Balance)
	}
	h, _ := ms.GetHolding(ctx, 1, "p1")
	if h.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", h.Quantity)
	}
}

func TestBuyRollsBackOnMidTransactionFault(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	// Balance is debited before the holding write; failing the holding
	// write must undo the debit too.
	boom := errors.New("boom")
	ms.Fail = map[string]error{"SaveHolding": boom}

	if _, err := ps.Buy(ctx, 1, "p1", 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected fault", err)
	}

	ms.Fail = nil
	a, _ := ms.GetAccount(ctx, 1)
	if a.Balance != 1000 || a.TotalInvested != 0 {
		t.Errorf("debit not rolled back: balance %v invested %v", a.Balance, a.TotalInvested)
	}
	if _, err := ms.GetHolding(ctx, 1, "p1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("holding exists after rollback")
	}
	if txns, _ := ms.ListTransactions(ctx, 1, 0); len(txns) != 0 {
		t.Errorf("transaction logged after rollback")
	}
	p, _ := ms.GetPlayer(ctx, "p1")
	if p.Popularity != 0 {
		t.Errorf("popularity = %d, want 0 after rollback", p.Popularity)
	}
}

func TestSellRollsBackOnLogFault(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Buy(ctx, 1, "p1", 3); err != nil {
		t.Fatalf("buy: %v", err)
	}

	boom := errors.New("boom")
	ms.Fail = map[string]error{"AppendTransaction": boom}
	if _, err := ps.Sell(ctx, 1, "p1", 3); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected fault", err)
	}
	ms.Fail = nil

	a, _ := ms.GetAccount(ctx, 1)
	if a.Balance != 700 {
		t.Errorf("balance = %v, want 700 (credit rolled back)", a.Balance)
	}
	h, err := ms.GetHolding(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("holding should survive rollback: %v", err)
	}
	if h.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", h.Quantity)
	}
}

func TestTransactionRecordsBalancesAndOrder(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)

	if _, err := ps.Buy(ctx, 1, "p1", 2); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := ps.Sell(ctx, 1, "p1", 1); err != nil {
		t.Fatalf("sell: %v", err)
	}

	txns, err := ps.GetTransactions(ctx, 1, 0)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txns))
	}
	// Most recent first.
	if txns[0].Type != models.TxnSell || txns[1].Type != models.TxnBuy {
		t.Errorf("order = [%s %s], want [SELL BUY]", txns[0].Type, txns[1].Type)
	}
	if txns[1].BalanceBefore != 1000 || txns[1].BalanceAfter != 800 {
		t.Errorf("buy balances = %v→%v, want 1000→800", txns[1].BalanceBefore, txns[1].BalanceAfter)
	}
	if txns[0].BalanceBefore != 800 || txns[0].BalanceAfter != 900 {
		t.Errorf("sell balances = %v→%v, want 800→900", txns[0].BalanceBefore, txns[0].BalanceAfter)
	}

	limited, _ := ps.GetTransactions(ctx, 1, 1)
	if len(limited) != 1 || limited[0].Type != models.TxnSell {
		t.Errorf("limit 1 should return only the latest record")
	}
}

func TestDetailedPortfolioComputesLiveValues(t *testing.T) {
	ps, ms := newTestService(t)
	ctx := context.Background()
	seedAccount(t, ms, 1, 1000)
	seedPlayer(t, ms, "p1", 100)
	seedPlayer(t, ms, "p2", 50)

	if _, err := ps.Buy(ctx, 1, "p1", 4); err != nil {
		t.Fatalf("buy p1: %v", err)
	}
	if _, err := ps.Buy(ctx, 1, "p2", 2); err != nil {
		t.Fatalf("buy p2: %v", err)
	}
	repricePlayer(t, ms, "p1", 125)

	d, err := ps.GetDetailedPortfolio(ctx, 1)
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if d.Balance != 500 {
		t.Errorf("balance = %v, want 500", d.Balance)
	}
	if d.TotalInvested != 500 {
		t.Errorf("invested = %v, want 500", d.TotalInvested)
	}
	// 4*125 + 2*50
	if d.TotalValue != 600 {
		t.Errorf("value = %v, want 600", d.TotalValue)
	}
	if d.TotalROI != 20 {
		t.Errorf("roi = %v, want 20", d.TotalROI)
	}
	if len(d.Holdings) != 2 {
		t.Fatalf("holdings = %d, want 2", len(d.Holdings))
	}
}
