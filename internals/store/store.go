// Package store defines the persistence interface for the trading ledger.
// PostgreSQL is the source of truth; the in-memory implementation backs
// the test suites.
package store

import (
	"context"
	"errors"

	"github.com/footstock/api-server/internals/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface shared by the service packages.
type Store interface {
	// Atomically runs fn against a transactional view of the store.
	// Every write fn performs commits as one unit; if fn returns an
	// error none of them become visible. Reads of account and holding
	// rows inside fn are serialized against concurrent transactions
	// touching the same rows.
	Atomically(ctx context.Context, fn func(tx Store) error) error

	// Players.
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, playerID string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	SavePlayer(ctx context.Context, p *models.Player) error
	DeletePlayer(ctx context.Context, playerID string) error
	// AdjustPopularity moves the distinct-holder counter by delta.
	AdjustPopularity(ctx context.Context, playerID string, delta int) error
	// CountHoldersOf counts accounts currently holding the player.
	CountHoldersOf(ctx context.Context, playerID string) (int, error)

	// Matchweek performance records, unique by (player, week).
	UpsertPlayerStat(ctx context.Context, s *models.PlayerStat) error
	ListPlayerStats(ctx context.Context, playerID string) ([]models.PlayerStat, error)

	// Accounts and holdings.
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, userID int) (*models.Account, error)
	SaveAccount(ctx context.Context, a *models.Account) error
	ListAccounts(ctx context.Context) ([]models.Account, error)
	GetHolding(ctx context.Context, userID int, playerID string) (*models.Holding, error)
	ListHoldings(ctx context.Context, userID int) ([]models.Holding, error)
	SaveHolding(ctx context.Context, h *models.Holding) error
	DeleteHolding(ctx context.Context, userID int, playerID string) error

	// Immutable transaction log.
	AppendTransaction(ctx context.Context, t *models.Transaction) error
	// ListTransactions returns the account's records most-recent-first,
	// limited to limit when limit > 0.
	ListTransactions(ctx context.Context, userID int, limit int) ([]models.Transaction, error)

	// Matchweeks.
	CreateMatchweek(ctx context.Context, m *models.Matchweek) error
	GetMatchweek(ctx context.Context, weekNumber int) (*models.Matchweek, error)
	GetActiveMatchweek(ctx context.Context) (*models.Matchweek, error)
	SaveMatchweek(ctx context.Context, m *models.Matchweek) error
	DeactivateMatchweeks(ctx context.Context) error

	// Users.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID int) (*models.User, error)
	GetUserByName(ctx context.Context, userName string) (*models.User, error)
	CountUsersByMail(ctx context.Context, mailID string) (int64, error)
}
