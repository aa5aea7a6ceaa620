package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/models"
	"flowjournal/internal/pagination"
)

// moneyScale is the scale derived profit/loss values are rounded to,
// using banker's rounding (round half to even).
const moneyScale = 2

// tradeService implements the trade ledger.
type tradeService struct {
	db *gorm.DB
}

// NewTradeService creates a new TradeServicer.
func NewTradeService(db *gorm.DB) TradeServicer {
	return &tradeService{db: db}
}

// computePnL is the single authoritative profit/loss formula. It must produce
// identical results regardless of call site (create vs. update).
func computePnL(direction models.TradeDirection, entryPrice, exitPrice, quantity, fees decimal.Decimal) (profitLoss, profitLossPercent decimal.Decimal) {
	var priceDiff decimal.Decimal
	if direction == models.TradeDirectionLong {
		priceDiff = exitPrice.Sub(entryPrice)
	} else {
		priceDiff = entryPrice.Sub(exitPrice)
	}

	profitLoss = priceDiff.Mul(quantity).Sub(fees).RoundBank(moneyScale)
	profitLossPercent = priceDiff.Div(entryPrice).Mul(decimal.NewFromInt(100)).RoundBank(moneyScale)
	return profitLoss, profitLossPercent
}

// applyDerivedFields recomputes the trade's derived profit/loss fields from
// its current state: populated when the trade is closed with an exit price,
// null otherwise.
func applyDerivedFields(trade *models.Trade) {
	if trade.Status == models.TradeStatusClosed && trade.ExitPrice.Valid {
		pl, plPct := computePnL(trade.Direction, trade.EntryPrice, trade.ExitPrice.Decimal, trade.Quantity, trade.Fees)
		trade.ProfitLoss = decimal.NewNullDecimal(pl)
		trade.ProfitLossPercent = decimal.NewNullDecimal(plPct)
		return
	}
	trade.ProfitLoss = decimal.NullDecimal{}
	trade.ProfitLossPercent = decimal.NullDecimal{}
}

// validateTrade checks the ledger's write invariants on a fully materialized
// trade record.
func validateTrade(trade *models.Trade) error {
	if strings.TrimSpace(trade.Symbol) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}
	if !trade.EntryPrice.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Entry price must be greater than 0")
	}
	if !trade.Quantity.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be greater than 0")
	}
	if trade.ExitPrice.Valid && !trade.ExitPrice.Decimal.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Exit price must be greater than 0")
	}
	if trade.Fees.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Fees cannot be negative")
	}
	if trade.EntryDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Entry date is required")
	}
	if trade.ExitDate != nil && trade.ExitDate.Before(trade.EntryDate) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Exit date cannot be before entry date")
	}
	return nil
}

// CreateTrade validates and stores a new trade, computing realized P&L at
// write time when the trade arrives already closed with an exit price.
func (s *tradeService) CreateTrade(userID string, in CreateTradeInput) (*models.Trade, error) {
	status := in.Status
	if status == "" {
		status = models.TradeStatusOpen
	}

	trade := &models.Trade{
		UserID:      userID,
		Symbol:      strings.ToUpper(strings.TrimSpace(in.Symbol)),
		Type:        in.Type,
		Direction:   in.Direction,
		EntryPrice:  in.EntryPrice,
		ExitPrice:   in.ExitPrice,
		Quantity:    in.Quantity,
		Fees:        in.Fees,
		EntryDate:   in.EntryDate,
		ExitDate:    in.ExitDate,
		StopLoss:    in.StopLoss,
		TakeProfit:  in.TakeProfit,
		StrategyID:  in.StrategyID,
		Notes:       in.Notes,
		Tags:        in.Tags,
		Screenshots: in.Screenshots,
		Status:      status,
	}

	if err := validateTrade(trade); err != nil {
		return nil, err
	}
	applyDerivedFields(trade)

	if err := s.db.Create(trade).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trade, nil
}

// ownedScope restricts a query to the caller's rows unless the caller is an
// admin, in which case scoping is bypassed entirely.
func ownedScope(userID string, role models.UserRole) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if role == models.RoleAdmin {
			return db
		}
		return db.Where("user_id = ?", userID)
	}
}

// findTrade loads a trade visible to the caller. A trade that exists but is
// owned by someone else is reported as not found, never as forbidden.
func (s *tradeService) findTrade(userID string, role models.UserRole, tradeID string) (*models.Trade, error) {
	var trade models.Trade
	err := s.db.Scopes(ownedScope(userID, role)).Where("id = ?", tradeID).First(&trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTradeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &trade, nil
}

// GetTrade returns a single trade, ownership-scoped.
func (s *tradeService) GetTrade(userID string, role models.UserRole, tradeID string) (*models.Trade, error) {
	return s.findTrade(userID, role, tradeID)
}

// ListTrades returns the caller's trades (all trades for admins), newest
// entry first. Trades sharing an entry date are ordered by id descending;
// ids are time-ordered UUIDs, so this is a stable creation-order tiebreak.
func (s *tradeService) ListTrades(userID string, role models.UserRole, filter TradeFilter, page pagination.PageRequest) ([]models.Trade, error) {
	page.Defaults()

	query := s.db.Scopes(ownedScope(userID, role))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var trades []models.Trade
	if err := query.Order("entry_date DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trades, nil
}

// dependsOnDerived reports whether the patch touches any field the derived
// profit/loss values are computed from.
func (p *TradePatch) dependsOnDerived() bool {
	return p.EntryPrice != nil || p.ExitPrice != nil || p.Quantity != nil ||
		p.Fees != nil || p.Direction != nil || p.Status != nil
}

// apply copies the patch's non-nil fields onto the trade.
func (p *TradePatch) apply(trade *models.Trade) {
	if p.Symbol != nil {
		trade.Symbol = strings.ToUpper(strings.TrimSpace(*p.Symbol))
	}
	if p.Type != nil {
		trade.Type = *p.Type
	}
	if p.Direction != nil {
		trade.Direction = *p.Direction
	}
	if p.EntryPrice != nil {
		trade.EntryPrice = *p.EntryPrice
	}
	if p.ExitPrice != nil {
		trade.ExitPrice = decimal.NewNullDecimal(*p.ExitPrice)
	}
	if p.Quantity != nil {
		trade.Quantity = *p.Quantity
	}
	if p.Fees != nil {
		trade.Fees = *p.Fees
	}
	if p.EntryDate != nil {
		trade.EntryDate = *p.EntryDate
	}
	if p.ExitDate != nil {
		trade.ExitDate = p.ExitDate
	}
	if p.StopLoss != nil {
		trade.StopLoss = decimal.NewNullDecimal(*p.StopLoss)
	}
	if p.TakeProfit != nil {
		trade.TakeProfit = decimal.NewNullDecimal(*p.TakeProfit)
	}
	if p.StrategyID != nil {
		trade.StrategyID = p.StrategyID
	}
	if p.Notes != nil {
		trade.Notes = *p.Notes
	}
	if p.Tags != nil {
		trade.Tags = p.Tags
	}
	if p.Screenshots != nil {
		trade.Screenshots = p.Screenshots
	}
	if p.Status != nil {
		trade.Status = *p.Status
	}
}

// UpdateTrade applies a partial update to a trade the caller may edit.
// Absent fields are left untouched. The derived profit/loss fields are
// recomputed only when a dependent field is part of the patch, always from
// the effective post-patch values — closing a trade that already carries an
// exit price computes P&L from that existing price.
func (s *tradeService) UpdateTrade(userID string, role models.UserRole, tradeID string, patch TradePatch) (*models.Trade, error) {
	trade, err := s.findTrade(userID, role, tradeID)
	if err != nil {
		return nil, err
	}

	patch.apply(trade)

	if err := validateTrade(trade); err != nil {
		return nil, err
	}
	if patch.dependsOnDerived() {
		applyDerivedFields(trade)
	}

	if err := s.db.Save(trade).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trade, nil
}

// DeleteTrade removes a trade the caller may edit.
func (s *tradeService) DeleteTrade(userID string, role models.UserRole, tradeID string) error {
	result := s.db.Scopes(ownedScope(userID, role)).Where("id = ?", tradeID).Delete(&models.Trade{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}
