// Package cache warms the Redis read-through caches from the store on a
// miss. Redis never acts as the source of truth; everything here can be
// rebuilt from Postgres.
package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/footstock/api-server/internals/store"
	"github.com/footstock/api-server/pkg/kvstore"
)

type CacheService struct {
	Store store.Store
	KV    kvstore.KVStore
}

func New(st store.Store, kv kvstore.KVStore) *CacheService {
	return &CacheService{
		Store: st,
		KV:    kv,
	}
}

// LoadPlayerPriceHistory rebuilds the players_<id> time-series list from
// the store's current quote and returns the fresh entries.
func (c *CacheService) LoadPlayerPriceHistory(ctx context.Context, playerID string) ([]string, error) {
	player, err := c.Store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	key := "players_" + playerID
	timestamp := player.LastUpdated.Format("2006-01-02 15:04:05.000000-07")
	value := fmt.Sprintf("%s,%.2f", timestamp, player.CurrentPrice)

	if err := c.KV.RPush(key, value); err != nil {
		return nil, err
	}

	return []string{value}, nil
}

// LoadPurse rebuilds the purse_<user_id> cache entry from the account row.
func (c *CacheService) LoadPurse(ctx context.Context, userID int) (string, error) {
	account, err := c.Store.GetAccount(ctx, userID)
	if err != nil {
		return "0", err
	}

	key := "purse_" + strconv.Itoa(userID)
	value := fmt.Sprintf("%.2f", account.Balance)

	if err := c.KV.Set(key, value); err != nil {
		return "0", err
	}

	return value, nil
}
