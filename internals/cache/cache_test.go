package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/footstock/api-server/internals/models"
	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

func TestLoadPlayerPriceHistoryWarmsList(t *testing.T) {
	ms := store.NewMemoryStore()
	kv := kvstore.NewMemory()
	svc := New(ms, kv)
	ctx := context.Background()

	err := ms.CreatePlayer(ctx, &models.Player{
		PlayerID: "p1", Name: "P1", Team: "T", Position: models.PositionFWD,
		CurrentPrice: 123.456, InitialPrice: 100,
		LastUpdated: time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed player: %v", err)
	}

	entries, err := svc.LoadPlayerPriceHistory(ctx, "p1")
	if err != nil {
		t.Fatalf("LoadPlayerPriceHistory: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0], ",123.46") {
		t.Errorf("entries = %v, want one timestamp,123.46 pair", entries)
	}

	cached, err := kv.LRange("players_p1", 0, -1)
	if err != nil {
		t.Fatalf("LRange: %v", err)
	}
	if len(cached) != 1 || cached[0] != entries[0] {
		t.Errorf("cache list = %v, want %v", cached, entries)
	}

	if _, err := svc.LoadPlayerPriceHistory(ctx, "ghost"); err == nil {
		t.Error("unknown player warmed without error")
	}
}

func TestLoadPurseWarmsBalance(t *testing.T) {
	ms := store.NewMemoryStore()
	kv := kvstore.NewMemory()
	svc := New(ms, kv)
	ctx := context.Background()

	err := ms.CreateAccount(ctx, &models.Account{UserID: 7, Balance: 4321.5, LastUpdated: time.Now()})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	value, err := svc.LoadPurse(ctx, 7)
	if err != nil {
		t.Fatalf("LoadPurse: %v", err)
	}
	if value != "4321.50" {
		t.Errorf("value = %q, want 4321.50", value)
	}

	cached, err := kv.Get("purse_7")
	if err != nil || cached != "4321.50" {
		t.Errorf("cached purse = %q (err %v), want 4321.50", cached, err)
	}

	if _, err := svc.LoadPurse(ctx, 99); err == nil {
		t.Error("unknown account warmed without error")
	}
}
