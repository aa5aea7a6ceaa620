package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the instrument class of a trade.
type TradeType string

const (
	TradeTypeStock   TradeType = "stock"
	TradeTypeForex   TradeType = "forex"
	TradeTypeCrypto  TradeType = "crypto"
	TradeTypeOptions TradeType = "options"
	TradeTypeFutures TradeType = "futures"
)

// TradeDirection is the side of a trade.
type TradeDirection string

const (
	TradeDirectionLong  TradeDirection = "long"
	TradeDirectionShort TradeDirection = "short"
)

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeStatusOpen      TradeStatus = "open"
	TradeStatusClosed    TradeStatus = "closed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// Trade represents a single journal entry in the trade ledger.
//
// ProfitLoss and ProfitLossPercent are derived at write time and only
// populated when the write produces a closed status with an exit price;
// they are never supplied directly by the caller. All monetary columns are
// NUMERIC and handled as fixed-point decimals in the application.
type Trade struct {
	Base
	UserID    string         `gorm:"type:uuid;not null;index" json:"userId"`
	Symbol    string         `gorm:"not null" json:"symbol"`
	Type      TradeType      `gorm:"not null" json:"type"`
	Direction TradeDirection `gorm:"not null" json:"direction"`

	EntryPrice decimal.Decimal     `gorm:"type:numeric(20,8);not null" json:"entryPrice"`
	ExitPrice  decimal.NullDecimal `gorm:"type:numeric(20,8)" json:"exitPrice"`
	Quantity   decimal.Decimal     `gorm:"type:numeric(20,8);not null" json:"quantity"`
	Fees       decimal.Decimal     `gorm:"type:numeric(20,8);not null;default:0" json:"fees"`

	EntryDate time.Time  `gorm:"not null;index" json:"entryDate"`
	ExitDate  *time.Time `json:"exitDate,omitempty"`

	StopLoss   decimal.NullDecimal `gorm:"type:numeric(20,8)" json:"stopLoss"`
	TakeProfit decimal.NullDecimal `gorm:"type:numeric(20,8)" json:"takeProfit"`

	ProfitLoss        decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"profitLoss"`
	ProfitLossPercent decimal.NullDecimal `gorm:"type:numeric(20,2)" json:"profitLossPercent"`

	StrategyID  *string  `gorm:"type:uuid" json:"strategyId,omitempty"`
	Notes       string   `json:"notes"`
	Tags        []string `gorm:"serializer:json" json:"tags"`
	Screenshots []string `gorm:"serializer:json" json:"screenshots"`

	Status TradeStatus `gorm:"not null;default:'open';index" json:"status"`
}
