package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/footstock/api-server/internals/models"
)

// PostgresStore implements Store on top of GORM/PostgreSQL.
//
// Atomically maps to a database transaction; inside one, account, holding
// and player reads take row locks (SELECT ... FOR UPDATE) so concurrent
// trades against the same rows serialize instead of committing against
// stale reads.
type PostgresStore struct {
	db   *gorm.DB
	inTx bool
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the ledger tables.
func (s *PostgresStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.PlayerStat{},
		&models.Account{},
		&models.Holding{},
		&models.Transaction{},
		&models.Matchweek{},
	)
}

func (s *PostgresStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresStore{db: tx, inTx: true})
	})
}

func (s *PostgresStore) forUpdate() string {
	if s.inTx {
		return " FOR UPDATE"
	}
	return ""
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Players ---

func (s *PostgresStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *PostgresStore) GetPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	var p models.Player
	err := s.db.WithContext(ctx).Raw("SELECT * FROM players WHERE player_id = ?"+s.forUpdate(), playerID).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	err := s.db.WithContext(ctx).Raw("SELECT * FROM players ORDER BY player_id").Scan(&players).Error
	return players, err
}

func (s *PostgresStore) SavePlayer(ctx context.Context, p *models.Player) error {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE players SET name = ?, team = ?, position = ?, current_price = ?, initial_price = ?, total_roi = ?, popularity = ?, price_change_percent = ?, image_url = ?, last_updated = ? WHERE player_id = ?",
		p.Name, p.Team, p.Position, p.CurrentPrice, p.InitialPrice, p.TotalROI, p.Popularity, p.PriceChangePercent, p.ImageURL, p.LastUpdated, p.PlayerID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeletePlayer(ctx context.Context, playerID string) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM player_stats WHERE player_id = ?", playerID).Error; err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Exec("DELETE FROM players WHERE player_id = ?", playerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AdjustPopularity(ctx context.Context, playerID string, delta int) error {
	res := s.db.WithContext(ctx).Exec("UPDATE players SET popularity = GREATEST(popularity + ?, 0) WHERE player_id = ?", delta, playerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountHoldersOf(ctx context.Context, playerID string) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Raw("SELECT COUNT(DISTINCT user_id) FROM holdings WHERE player_id = ?", playerID).Scan(&count).Error
	return count, err
}

// --- Player stats ---

func (s *PostgresStore) UpsertPlayerStat(ctx context.Context, stat *models.PlayerStat) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO player_stats (player_id, matchweek, goals, assists, clean_sheet, yellow_cards, red_cards, minutes_played, rating, roi)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (player_id, matchweek) DO UPDATE SET
		 goals = EXCLUDED.goals, assists = EXCLUDED.assists, clean_sheet = EXCLUDED.clean_sheet,
		 yellow_cards = EXCLUDED.yellow_cards, red_cards = EXCLUDED.red_cards,
		 minutes_played = EXCLUDED.minutes_played, rating = EXCLUDED.rating, roi = EXCLUDED.roi`,
		stat.PlayerID, stat.Matchweek, stat.Goals, stat.Assists, stat.CleanSheet,
		stat.YellowCards, stat.RedCards, stat.MinutesPlayed, stat.Rating, stat.ROI,
	).Error
}

func (s *PostgresStore) ListPlayerStats(ctx context.Context, playerID string) ([]models.PlayerStat, error) {
	var stats []models.PlayerStat
	err := s.db.WithContext(ctx).Raw("SELECT * FROM player_stats WHERE player_id = ? ORDER BY matchweek", playerID).Scan(&stats).Error
	return stats, err
}

// --- Accounts and holdings ---

func (s *PostgresStore) CreateAccount(ctx context.Context, a *models.Account) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *PostgresStore) GetAccount(ctx context.Context, userID int) (*models.Account, error) {
	var a models.Account
	err := s.db.WithContext(ctx).Raw("SELECT * FROM accounts WHERE user_id = ?"+s.forUpdate(), userID).First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *PostgresStore) SaveAccount(ctx context.Context, a *models.Account) error {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE accounts SET balance = ?, total_invested = ?, portfolio_value = ?, last_updated = ? WHERE user_id = ?",
		a.Balance, a.TotalInvested, a.PortfolioValue, a.LastUpdated, a.UserID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.WithContext(ctx).Raw("SELECT * FROM accounts ORDER BY user_id").Scan(&accounts).Error
	return accounts, err
}

func (s *PostgresStore) GetHolding(ctx context.Context, userID int, playerID string) (*models.Holding, error) {
	var h models.Holding
	err := s.db.WithContext(ctx).Raw("SELECT * FROM holdings WHERE user_id = ? AND player_id = ?"+s.forUpdate(), userID, playerID).First(&h).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

func (s *PostgresStore) ListHoldings(ctx context.Context, userID int) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).Raw("SELECT * FROM holdings WHERE user_id = ? ORDER BY player_id", userID).Scan(&holdings).Error
	return holdings, err
}

func (s *PostgresStore) SaveHolding(ctx context.Context, h *models.Holding) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO holdings (user_id, player_id, quantity, purchase_price, purchased_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, player_id) DO UPDATE SET
		 quantity = EXCLUDED.quantity, purchase_price = EXCLUDED.purchase_price, purchased_at = EXCLUDED.purchased_at`,
		h.UserID, h.PlayerID, h.Quantity, h.PurchasePrice, h.PurchasedAt,
	).Error
}

func (s *PostgresStore) DeleteHolding(ctx context.Context, userID int, playerID string) error {
	res := s.db.WithContext(ctx).Exec("DELETE FROM holdings WHERE user_id = ? AND player_id = ?", userID, playerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Transaction log ---

func (s *PostgresStore) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO transactions (txn_id, user_id, player_id, type, quantity, price_per_unit, total_amount, balance_before, balance_after, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TxnID, t.UserID, t.PlayerID, t.Type, t.Quantity, t.PricePerUnit,
		t.TotalAmount, t.BalanceBefore, t.BalanceAfter, t.CreatedAt,
	).Error
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID int, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	q := "SELECT * FROM transactions WHERE user_id = ? ORDER BY created_at DESC"
	if limit > 0 {
		err := s.db.WithContext(ctx).Raw(q+" LIMIT ?", userID, limit).Scan(&txns).Error
		return txns, err
	}
	err := s.db.WithContext(ctx).Raw(q, userID).Scan(&txns).Error
	return txns, err
}

// --- Matchweeks ---

func (s *PostgresStore) CreateMatchweek(ctx context.Context, m *models.Matchweek) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *PostgresStore) GetMatchweek(ctx context.Context, weekNumber int) (*models.Matchweek, error) {
	var m models.Matchweek
	err := s.db.WithContext(ctx).Raw("SELECT * FROM matchweeks WHERE week_number = ?"+s.forUpdate(), weekNumber).First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) GetActiveMatchweek(ctx context.Context) (*models.Matchweek, error) {
	var m models.Matchweek
	err := s.db.WithContext(ctx).Raw("SELECT * FROM matchweeks WHERE is_active = true").First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) SaveMatchweek(ctx context.Context, m *models.Matchweek) error {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE matchweeks SET start_date = ?, end_date = ?, is_active = ?, is_completed = ? WHERE week_number = ?",
		m.StartDate, m.EndDate, m.IsActive, m.IsCompleted, m.WeekNumber,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeactivateMatchweeks(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("UPDATE matchweeks SET is_active = false WHERE is_active = true").Error
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *PostgresStore) GetUser(ctx context.Context, userID int) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Raw("SELECT * FROM users WHERE user_id = ?", userID).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByName(ctx context.Context, userName string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Raw("SELECT * FROM users WHERE user_name = ?", userName).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *PostgresStore) CountUsersByMail(ctx context.Context, mailID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw("SELECT COUNT(*) FROM users WHERE mail_id = ?", mailID).Scan(&count).Error
	return count, err
}
