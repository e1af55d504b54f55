// Package models holds the persisted table structures shared by the
// services and the store implementations.
package models

import "time"

// Player positions form a closed set. Goal weighting and clean-sheet
// bonuses depend on it.
const (
	PositionGK  = "GK"
	PositionDEF = "DEF"
	PositionMID = "MID"
	PositionFWD = "FWD"
)

func ValidPosition(p string) bool {
	switch p {
	case PositionGK, PositionDEF, PositionMID, PositionFWD:
		return true
	}
	return false
}

// Player is a tradable entity. CurrentPrice never drops below the floor
// price; Popularity counts distinct accounts currently holding the player
// and is maintained incrementally by the trade path.
type Player struct {
	PlayerID           string    `json:"player_id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"not null"`
	Team               string    `json:"team" gorm:"not null"`
	Position           string    `json:"position" gorm:"not null"`
	CurrentPrice       float64   `json:"current_price" gorm:"not null"`
	InitialPrice       float64   `json:"initial_price" gorm:"not null"`
	TotalROI           float64   `json:"total_roi"`
	Popularity         int       `json:"popularity"`
	PriceChangePercent float64   `json:"price_change_percent"`
	ImageURL           string    `json:"image_url"`
	LastUpdated        time.Time `json:"last_updated"`
}

// PlayerStat is one matchweek's reported performance for a player, unique
// by (player_id, matchweek). ROI is the derived matchweek return, computed
// once on submission and stored.
type PlayerStat struct {
	PlayerID      string  `json:"player_id" gorm:"primaryKey"`
	Matchweek     int     `json:"matchweek" gorm:"primaryKey"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	CleanSheet    bool    `json:"clean_sheet"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
	MinutesPlayed int     `json:"minutes_played"`
	Rating        float64 `json:"rating"`
	ROI           float64 `json:"roi"`
}

// Account is a user's ledger: cash balance plus the running invested total.
// PortfolioValue is a convenience cache refreshed on matchweek completion;
// live reads never trust it.
type Account struct {
	UserID         int       `json:"user_id" gorm:"primaryKey"`
	Balance        float64   `json:"balance" gorm:"not null"`
	TotalInvested  float64   `json:"total_invested"`
	PortfolioValue float64   `json:"portfolio_value"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Holding is an account's position in one player: integer quantity and the
// weighted-average purchase price. At most one row per (user, player).
type Holding struct {
	UserID        int       `json:"user_id" gorm:"primaryKey"`
	PlayerID      string    `json:"player_id" gorm:"primaryKey"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	PurchasePrice float64   `json:"purchase_price" gorm:"not null"`
	PurchasedAt   time.Time `json:"purchased_at"`
}

const (
	TxnBuy  = "BUY"
	TxnSell = "SELL"
)

// Transaction is an immutable settled-trade record. Rows are only ever
// appended.
type Transaction struct {
	TxnID         string    `json:"txn_id" gorm:"primaryKey"`
	UserID        int       `json:"user_id" gorm:"index:idx_txn_user_time"`
	PlayerID      string    `json:"player_id"`
	Type          string    `json:"type" gorm:"not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	PricePerUnit  float64   `json:"price_per_unit" gorm:"not null"`
	TotalAmount   float64   `json:"total_amount" gorm:"not null"`
	BalanceBefore float64   `json:"balance_before"`
	BalanceAfter  float64   `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at" gorm:"index:idx_txn_user_time"`
}

// Matchweek is a reporting window. At most one row is active at a time;
// a completed matchweek never leaves that state.
type Matchweek struct {
	WeekNumber  int       `json:"week_number" gorm:"primaryKey"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	IsActive    bool      `json:"is_active"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is the auth identity backing an account.
type User struct {
	UserID     int    `json:"user_id" gorm:"primaryKey;autoIncrement;not null"`
	UserName   string `json:"user_name" gorm:"not null;uniqueIndex"`
	Password   string `json:"-" gorm:"not null"`
	MailID     string `json:"mail_id" gorm:"not null;uniqueIndex"`
	ProfilePic string `json:"profile_pic"`
}
