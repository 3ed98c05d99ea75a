package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction tags recorded against a holding.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Portfolio is the per-user collection of holdings. Version is bumped on
// every save and checked in a conditional update, so two concurrent
// read-modify-write cycles cannot both win.
type Portfolio struct {
	gorm.Model
	UserID   uint      `json:"userId" gorm:"uniqueIndex"`
	Version  int       `json:"-"`
	Holdings []Holding `json:"holdings" gorm:"foreignKey:PortfolioID"`
}

// Holding is one position in a single ticker symbol. AverageBuyPrice stays
// the quantity-weighted mean of all recorded buys; quantity never goes
// negative.
type Holding struct {
	gorm.Model
	PortfolioID     uint      `json:"-" gorm:"index:idx_portfolio_symbol,unique"`
	Symbol          string    `json:"symbol" gorm:"index:idx_portfolio_symbol,unique"`
	Quantity        float64   `json:"quantity"`
	AverageBuyPrice float64   `json:"averageBuyPrice"`
	Transactions    []string  `json:"transactions" gorm:"serializer:json;type:text"`
	PurchaseDate    time.Time `json:"purchaseDate"`
}
