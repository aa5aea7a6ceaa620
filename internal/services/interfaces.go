package services

import (
	"time"

	"github.com/shopspring/decimal"

	"flowjournal/internal/models"
	"flowjournal/internal/pagination"
)

// RegisterInput holds the fields accepted when registering a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.UserRole
	TeamID    *string
}

// UserServicer defines the contract for account lifecycle business logic.
type UserServicer interface {
	Register(in RegisterInput) (*models.User, error)
	Login(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CompleteOnboarding(userID, password, firstName, lastName string) (*models.User, error)
	DeleteAccount(userID string) error
}

// VerificationServicer defines the contract for email verification tokens.
type VerificationServicer interface {
	IssueToken(user *models.User) (string, error)
	SendVerificationEmail(user *models.User) error
	Consume(token string) (user *models.User, alreadyVerified bool, err error)
	Resend(email string) error
}

// GoogleProfile is the subset of the identity provider's userinfo response
// the directory consumes.
type GoogleProfile struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// OAuthServicer defines the contract for federated login.
type OAuthServicer interface {
	LoginOrCreate(profile GoogleProfile) (*models.User, error)
}

// CreateTradeInput holds the validated fields for a new trade record.
type CreateTradeInput struct {
	Symbol      string
	Type        models.TradeType
	Direction   models.TradeDirection
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.NullDecimal
	Quantity    decimal.Decimal
	Fees        decimal.Decimal
	EntryDate   time.Time
	ExitDate    *time.Time
	StopLoss    decimal.NullDecimal
	TakeProfit  decimal.NullDecimal
	StrategyID  *string
	Notes       string
	Tags        []string
	Screenshots []string
	Status      models.TradeStatus
}

// TradePatch is a typed partial update for a trade. Nil fields are left
// untouched. Derived profit/loss fields are recomputed only when one of
// their dependent fields (prices, quantity, fees, direction, status) is set.
type TradePatch struct {
	Symbol      *string
	Type        *models.TradeType
	Direction   *models.TradeDirection
	EntryPrice  *decimal.Decimal
	ExitPrice   *decimal.Decimal
	Quantity    *decimal.Decimal
	Fees        *decimal.Decimal
	EntryDate   *time.Time
	ExitDate    *time.Time
	StopLoss    *decimal.Decimal
	TakeProfit  *decimal.Decimal
	StrategyID  *string
	Notes       *string
	Tags        []string
	Screenshots []string
	Status      *models.TradeStatus
}

// TradeFilter holds optional filter parameters for listing trades.
type TradeFilter struct {
	Status *models.TradeStatus
}

// TradeServicer defines the contract for the trade ledger.
type TradeServicer interface {
	CreateTrade(userID string, in CreateTradeInput) (*models.Trade, error)
	GetTrade(userID string, role models.UserRole, tradeID string) (*models.Trade, error)
	ListTrades(userID string, role models.UserRole, filter TradeFilter, page pagination.PageRequest) ([]models.Trade, error)
	UpdateTrade(userID string, role models.UserRole, tradeID string, patch TradePatch) (*models.Trade, error)
	DeleteTrade(userID string, role models.UserRole, tradeID string) error
}

// TradeStats contains rollup performance statistics over a set of trades.
type TradeStats struct {
	TotalTrades     int64           `json:"totalTrades"`
	ClosedTrades    int64           `json:"closedTrades"`
	OpenTrades      int64           `json:"openTrades"`
	WinningTrades   int64           `json:"winningTrades"`
	LosingTrades    int64           `json:"losingTrades"`
	WinRate         decimal.Decimal `json:"winRate"`
	TotalProfitLoss decimal.Decimal `json:"totalProfitLoss"`
	AvgWin          decimal.Decimal `json:"avgWin"`
	AvgLoss         decimal.Decimal `json:"avgLoss"`
	BestTrade       decimal.Decimal `json:"bestTrade"`
	WorstTrade      decimal.Decimal `json:"worstTrade"`
}

// StatsServicer defines the contract for rollup statistics.
type StatsServicer interface {
	ComputeStats(userID string, role models.UserRole) (*TradeStats, error)
}

// SettingsPatch is a typed partial update for user settings.
type SettingsPatch struct {
	Theme                 *string
	Language              *string
	Currency              *string
	Timezone              *string
	DefaultRiskPercentage *decimal.Decimal
	EnableNotifications   *bool
	CompactMode           *bool
}

// SettingsServicer defines the contract for per-user settings.
type SettingsServicer interface {
	GetSettings(userID string) (*models.UserSettings, error)
	UpdateSettings(userID string, patch SettingsPatch) (*models.UserSettings, error)
}
