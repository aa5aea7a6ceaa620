package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "flowjournal/internal/errors"
	"flowjournal/internal/middleware"
	"flowjournal/internal/models"
	"flowjournal/internal/pagination"
	"flowjournal/internal/services"
	"flowjournal/internal/uuid"
)

// TradeHandler handles trade ledger and stats requests.
type TradeHandler struct {
	tradeService services.TradeServicer
	statsService services.StatsServicer
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService services.TradeServicer, statsService services.StatsServicer) *TradeHandler {
	return &TradeHandler{tradeService: tradeService, statsService: statsService}
}

// CreateTradeRequest represents the request payload for creating a trade
type CreateTradeRequest struct {
	Symbol      string           `json:"symbol" binding:"required,max=32"`
	Type        string           `json:"type" binding:"required,trade_type"`
	Direction   string           `json:"direction" binding:"required,trade_direction"`
	EntryPrice  decimal.Decimal  `json:"entryPrice" binding:"required"`
	ExitPrice   *decimal.Decimal `json:"exitPrice"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	Fees        *decimal.Decimal `json:"fees"`
	EntryDate   string           `json:"entryDate" binding:"required"`
	ExitDate    *string          `json:"exitDate"`
	StopLoss    *decimal.Decimal `json:"stopLoss"`
	TakeProfit  *decimal.Decimal `json:"takeProfit"`
	StrategyID  *string          `json:"strategyId" binding:"omitempty,uuid"`
	Notes       string           `json:"notes"`
	Tags        []string         `json:"tags"`
	Screenshots []string         `json:"screenshots"`
	Status      string           `json:"status" binding:"omitempty,trade_status"`
}

// UpdateTradeRequest represents the partial-update payload for a trade.
// Absent fields are left untouched.
type UpdateTradeRequest struct {
	Symbol      *string          `json:"symbol" binding:"omitempty,max=32"`
	Type        *string          `json:"type" binding:"omitempty,trade_type"`
	Direction   *string          `json:"direction" binding:"omitempty,trade_direction"`
	EntryPrice  *decimal.Decimal `json:"entryPrice"`
	ExitPrice   *decimal.Decimal `json:"exitPrice"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Fees        *decimal.Decimal `json:"fees"`
	EntryDate   *string          `json:"entryDate"`
	ExitDate    *string          `json:"exitDate"`
	StopLoss    *decimal.Decimal `json:"stopLoss"`
	TakeProfit  *decimal.Decimal `json:"takeProfit"`
	StrategyID  *string          `json:"strategyId" binding:"omitempty,uuid"`
	Notes       *string          `json:"notes"`
	Tags        []string         `json:"tags"`
	Screenshots []string         `json:"screenshots"`
	Status      *string          `json:"status" binding:"omitempty,trade_status"`
}

// ListTradesRequest represents the query parameters for listing trades
type ListTradesRequest struct {
	Status *string `form:"status" binding:"omitempty,trade_status"`
	pagination.PageRequest
}

// callerIdentity pulls the authenticated user and role from the context.
func callerIdentity(c *gin.Context) (string, models.UserRole, error) {
	userID, err := getUserID(c)
	if err != nil {
		return "", "", err
	}
	return userID, middleware.RoleFromContext(c), nil
}

// tradeID validates the :id path parameter. Malformed IDs cannot match any
// trade, so they are reported as not found rather than as a parse error.
func tradeID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if !uuid.IsValid(id) {
		return "", apperrors.ErrTradeNotFound
	}
	return id, nil
}

// CreateTrade handles the creation of a new trade
// @Summary     Create a trade
// @Description Record a new trade. P&L is derived at write time for closed trades with an exit price.
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTradeRequest true "Trade details"
// @Success     201 {object} models.Trade "Trade created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /trades [post]
func (h *TradeHandler) CreateTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entryDate, err := parseFlexibleTime(req.EntryDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "entryDate: "+err.Error()))
		return
	}

	var exitDate *time.Time
	if req.ExitDate != nil && *req.ExitDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.ExitDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "exitDate: "+parseErr.Error()))
			return
		}
		exitDate = &parsed
	}

	in := services.CreateTradeInput{
		Symbol:      req.Symbol,
		Type:        models.TradeType(req.Type),
		Direction:   models.TradeDirection(req.Direction),
		EntryPrice:  req.EntryPrice,
		Quantity:    req.Quantity,
		EntryDate:   entryDate,
		ExitDate:    exitDate,
		StrategyID:  req.StrategyID,
		Notes:       req.Notes,
		Tags:        req.Tags,
		Screenshots: req.Screenshots,
		Status:      models.TradeStatus(req.Status),
	}
	if req.ExitPrice != nil {
		in.ExitPrice = decimal.NewNullDecimal(*req.ExitPrice)
	}
	if req.Fees != nil {
		in.Fees = *req.Fees
	}
	if req.StopLoss != nil {
		in.StopLoss = decimal.NewNullDecimal(*req.StopLoss)
	}
	if req.TakeProfit != nil {
		in.TakeProfit = decimal.NewNullDecimal(*req.TakeProfit)
	}

	trade, err := h.tradeService.CreateTrade(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trade)
}

// ListTrades returns the caller's trades, paginated
// @Summary     List trades
// @Description List trades newest-entry first, optionally filtered by status. Admins see all trades.
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status (open|closed|cancelled)"
// @Param       page   query int    false "Page (1-indexed)"
// @Param       limit  query int    false "Page size (default 50)"
// @Success     200 {object} map[string]interface{} "Trades with pagination info"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /trades [get]
func (h *TradeHandler) ListTrades(c *gin.Context) {
	userID, role, err := callerIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListTradesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	req.Defaults()

	filter := services.TradeFilter{}
	if req.Status != nil {
		status := models.TradeStatus(*req.Status)
		filter.Status = &status
	}

	trades, err := h.tradeService.ListTrades(userID, role, filter, req.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"page":   req.Page,
		"limit":  req.Limit,
	})
}

// GetTrade returns a single trade by ID
// @Summary     Get a trade
// @Description Get a single trade. Returns 404 for trades owned by other users.
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Trade ID"
// @Success     200 {object} models.Trade "Trade"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /trades/{id} [get]
func (h *TradeHandler) GetTrade(c *gin.Context) {
	userID, role, err := callerIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := tradeID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trade, err := h.tradeService.GetTrade(userID, role, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trade)
}

// UpdateTrade applies a partial update to a trade
// @Summary     Update a trade
// @Description Partially update a trade. P&L is recomputed when a dependent field changes.
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Trade ID"
// @Param       request body UpdateTradeRequest true "Fields to update"
// @Success     200 {object} models.Trade "Updated trade"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /trades/{id} [put]
func (h *TradeHandler) UpdateTrade(c *gin.Context) {
	userID, role, err := callerIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := tradeID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := services.TradePatch{
		Symbol:      req.Symbol,
		EntryPrice:  req.EntryPrice,
		ExitPrice:   req.ExitPrice,
		Quantity:    req.Quantity,
		Fees:        req.Fees,
		StopLoss:    req.StopLoss,
		TakeProfit:  req.TakeProfit,
		StrategyID:  req.StrategyID,
		Notes:       req.Notes,
		Tags:        req.Tags,
		Screenshots: req.Screenshots,
	}
	if req.Type != nil {
		t := models.TradeType(*req.Type)
		patch.Type = &t
	}
	if req.Direction != nil {
		d := models.TradeDirection(*req.Direction)
		patch.Direction = &d
	}
	if req.Status != nil {
		s := models.TradeStatus(*req.Status)
		patch.Status = &s
	}
	if req.EntryDate != nil {
		parsed, parseErr := parseFlexibleTime(*req.EntryDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "entryDate: "+parseErr.Error()))
			return
		}
		patch.EntryDate = &parsed
	}
	if req.ExitDate != nil {
		parsed, parseErr := parseFlexibleTime(*req.ExitDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "exitDate: "+parseErr.Error()))
			return
		}
		patch.ExitDate = &parsed
	}

	trade, err := h.tradeService.UpdateTrade(userID, role, id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trade)
}

// DeleteTrade removes a trade
// @Summary     Delete a trade
// @Description Delete a trade. Returns 404 for trades owned by other users.
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Trade ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /trades/{id} [delete]
func (h *TradeHandler) DeleteTrade(c *gin.Context) {
	userID, role, err := callerIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := tradeID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.tradeService.DeleteTrade(userID, role, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted successfully"})
}

// GetStats returns rollup statistics over the caller's trades
// @Summary     Get trade statistics
// @Description Compute rollup performance statistics. Admins aggregate over all trades.
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.TradeStats "Statistics"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /trades/stats [get]
func (h *TradeHandler) GetStats(c *gin.Context) {
	userID, role, err := callerIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.statsService.ComputeStats(userID, role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
