package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/models"
)

// statsService computes rollup performance statistics over a user's trades.
// Aggregation happens in the application over fixed-point decimals rather
// than in SQL, so money sums and means never pass through binary floats.
type statsService struct {
	db *gorm.DB
}

// NewStatsService creates a new StatsServicer.
func NewStatsService(db *gorm.DB) StatsServicer {
	return &statsService{db: db}
}

// ComputeStats aggregates over the caller's trades; admins aggregate over
// all trades. Zero-P&L trades count as neither winning nor losing, and a
// scope with no closed trades reports a win rate of 0.
func (s *statsService) ComputeStats(userID string, role models.UserRole) (*TradeStats, error) {
	var trades []models.Trade
	query := s.db.Model(&models.Trade{}).
		Select("status", "profit_loss").
		Scopes(ownedScope(userID, role))
	if err := query.Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats := &TradeStats{
		WinRate:         decimal.Zero,
		TotalProfitLoss: decimal.Zero,
		AvgWin:          decimal.Zero,
		AvgLoss:         decimal.Zero,
		BestTrade:       decimal.Zero,
		WorstTrade:      decimal.Zero,
	}

	var (
		sumWins, sumLosses decimal.Decimal
		havePnL            bool
	)

	for _, trade := range trades {
		stats.TotalTrades++
		switch trade.Status {
		case models.TradeStatusClosed:
			stats.ClosedTrades++
		case models.TradeStatusOpen:
			stats.OpenTrades++
		}

		if !trade.ProfitLoss.Valid {
			continue
		}
		pl := trade.ProfitLoss.Decimal
		stats.TotalProfitLoss = stats.TotalProfitLoss.Add(pl)

		if !havePnL {
			stats.BestTrade = pl
			stats.WorstTrade = pl
			havePnL = true
		} else {
			if pl.GreaterThan(stats.BestTrade) {
				stats.BestTrade = pl
			}
			if pl.LessThan(stats.WorstTrade) {
				stats.WorstTrade = pl
			}
		}

		switch {
		case pl.IsPositive():
			stats.WinningTrades++
			sumWins = sumWins.Add(pl)
		case pl.IsNegative():
			stats.LosingTrades++
			sumLosses = sumLosses.Add(pl)
		}
	}

	if stats.ClosedTrades > 0 {
		stats.WinRate = decimal.NewFromInt(stats.WinningTrades).
			Div(decimal.NewFromInt(stats.ClosedTrades)).
			Mul(decimal.NewFromInt(100)).
			RoundBank(moneyScale)
	}
	if stats.WinningTrades > 0 {
		stats.AvgWin = sumWins.Div(decimal.NewFromInt(stats.WinningTrades)).RoundBank(moneyScale)
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = sumLosses.Div(decimal.NewFromInt(stats.LosingTrades)).RoundBank(moneyScale)
	}

	return stats, nil
}
