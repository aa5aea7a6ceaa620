package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"flowjournal/internal/models"
	"flowjournal/internal/pagination"
	"flowjournal/internal/testutil"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func openTradeInput(t *testing.T) CreateTradeInput {
	t.Helper()
	return CreateTradeInput{
		Symbol:     "aapl",
		Type:       models.TradeTypeStock,
		Direction:  models.TradeDirectionLong,
		EntryPrice: dec(t, "100"),
		Quantity:   dec(t, "10"),
		EntryDate:  time.Now().Add(-24 * time.Hour),
	}
}

func TestCreateTrade(t *testing.T) {
	t.Run("open_trade_has_no_pnl", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		trade, err := svc.CreateTrade(user.ID, openTradeInput(t))
		testutil.AssertNoError(t, err)

		if trade.ID == "" {
			t.Fatal("expected generated trade ID")
		}
		if trade.Symbol != "AAPL" {
			t.Errorf("expected symbol normalized to AAPL, got %s", trade.Symbol)
		}
		if trade.Status != models.TradeStatusOpen {
			t.Errorf("expected default status open, got %s", trade.Status)
		}
		if trade.ProfitLoss.Valid || trade.ProfitLossPercent.Valid {
			t.Error("open trade should have null profit/loss")
		}
	})

	t.Run("closed_long_trade_derives_pnl", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		exitDate := time.Now()
		in := openTradeInput(t)
		in.ExitPrice = decimal.NewNullDecimal(dec(t, "110"))
		in.Fees = dec(t, "5")
		in.ExitDate = &exitDate
		in.Status = models.TradeStatusClosed

		trade, err := svc.CreateTrade(user.ID, in)
		testutil.AssertNoError(t, err)

		// (110-100)*10 - 5 = 95; (10/100)*100 = 10%
		testutil.AssertNullDecimalEqual(t, "95", trade.ProfitLoss)
		testutil.AssertNullDecimalEqual(t, "10", trade.ProfitLossPercent)
	})

	t.Run("closed_short_trade_inverts_sign", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		in := openTradeInput(t)
		in.Direction = models.TradeDirectionShort
		in.ExitPrice = decimal.NewNullDecimal(dec(t, "110"))
		in.Status = models.TradeStatusClosed

		trade, err := svc.CreateTrade(user.ID, in)
		testutil.AssertNoError(t, err)

		// Short losing into a rising price: (100-110)*10 = -100.
		testutil.AssertNullDecimalEqual(t, "-100", trade.ProfitLoss)
		testutil.AssertNullDecimalEqual(t, "-10", trade.ProfitLossPercent)
	})

	t.Run("closed_without_exit_price_stays_null", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		in := openTradeInput(t)
		in.Status = models.TradeStatusClosed

		trade, err := svc.CreateTrade(user.ID, in)
		testutil.AssertNoError(t, err)
		if trade.ProfitLoss.Valid {
			t.Error("closed trade without exit price should have null profit/loss")
		}
	})

	t.Run("pnl_rounds_half_to_even", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		// (100.005-100)*1 = 0.005 -> banker's rounding to 0.00
		in := openTradeInput(t)
		in.Quantity = dec(t, "1")
		in.ExitPrice = decimal.NewNullDecimal(dec(t, "100.005"))
		in.Status = models.TradeStatusClosed

		trade, err := svc.CreateTrade(user.ID, in)
		testutil.AssertNoError(t, err)
		testutil.AssertNullDecimalEqual(t, "0", trade.ProfitLoss)

		// (100.015-100)*1 = 0.015 -> rounds to 0.02
		in.ExitPrice = decimal.NewNullDecimal(dec(t, "100.015"))
		trade, err = svc.CreateTrade(user.ID, in)
		testutil.AssertNoError(t, err)
		testutil.AssertNullDecimalEqual(t, "0.02", trade.ProfitLoss)
	})

	t.Run("rejects_non_positive_entry_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		in := openTradeInput(t)
		in.EntryPrice = dec(t, "0")
		_, err := svc.CreateTrade(user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects_negative_fees", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		in := openTradeInput(t)
		in.Fees = dec(t, "-1")
		_, err := svc.CreateTrade(user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects_exit_date_before_entry_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		in := openTradeInput(t)
		exitDate := in.EntryDate.Add(-time.Hour)
		in.ExitDate = &exitDate
		_, err := svc.CreateTrade(user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetTrade(t *testing.T) {
	t.Run("owner_can_read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, user.ID)

		got, err := svc.GetTrade(user.ID, user.Role, trade.ID)
		testutil.AssertNoError(t, err)
		if got.ID != trade.ID {
			t.Errorf("expected trade %s, got %s", trade.ID, got.ID)
		}
	})

	t.Run("other_users_trade_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, owner.ID)

		_, err := svc.GetTrade(intruder.ID, intruder.Role, trade.ID)
		testutil.AssertAppError(t, err, "TRADE_NOT_FOUND")
	})

	t.Run("admin_can_read_any_trade", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		owner := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, owner.ID)

		got, err := svc.GetTrade(admin.ID, admin.Role, trade.ID)
		testutil.AssertNoError(t, err)
		if got.UserID != owner.ID {
			t.Errorf("expected trade owned by %s, got %s", owner.ID, got.UserID)
		}
	})
}

func TestListTrades(t *testing.T) {
	t.Run("orders_newest_entry_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		old := openTradeInput(t)
		old.Symbol = "OLD"
		old.EntryDate = time.Now().Add(-48 * time.Hour)
		_, err := svc.CreateTrade(user.ID, old)
		testutil.AssertNoError(t, err)

		recent := openTradeInput(t)
		recent.Symbol = "NEW"
		recent.EntryDate = time.Now().Add(-1 * time.Hour)
		_, err = svc.CreateTrade(user.ID, recent)
		testutil.AssertNoError(t, err)

		trades, err := svc.ListTrades(user.ID, user.Role, TradeFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(trades) != 2 {
			t.Fatalf("expected 2 trades, got %d", len(trades))
		}
		if trades[0].Symbol != "NEW" || trades[1].Symbol != "OLD" {
			t.Errorf("expected [NEW OLD], got [%s %s]", trades[0].Symbol, trades[1].Symbol)
		}
	})

	t.Run("equal_entry_dates_break_ties_by_creation_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		sameDate := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
		for _, symbol := range []string{"FIRST", "SECOND", "THIRD"} {
			in := openTradeInput(t)
			in.Symbol = symbol
			in.EntryDate = sameDate
			_, err := svc.CreateTrade(user.ID, in)
			testutil.AssertNoError(t, err)
		}

		trades, err := svc.ListTrades(user.ID, user.Role, TradeFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(trades) != 3 {
			t.Fatalf("expected 3 trades, got %d", len(trades))
		}
		// IDs are time-ordered, so the most recently created sorts first.
		if trades[0].Symbol != "THIRD" || trades[2].Symbol != "FIRST" {
			t.Errorf("expected [THIRD SECOND FIRST], got [%s %s %s]",
				trades[0].Symbol, trades[1].Symbol, trades[2].Symbol)
		}
	})

	t.Run("filters_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestOpenTrade(t, db, user.ID)
		testutil.CreateTestClosedTrade(t, db, user.ID, "100.00")

		closed := models.TradeStatusClosed
		trades, err := svc.ListTrades(user.ID, user.Role, TradeFilter{Status: &closed}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(trades) != 1 {
			t.Fatalf("expected 1 closed trade, got %d", len(trades))
		}
		if trades[0].Status != models.TradeStatusClosed {
			t.Errorf("expected closed trade, got %s", trades[0].Status)
		}
	})

	t.Run("excludes_other_users_trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestOpenTrade(t, db, user.ID)
		testutil.CreateTestOpenTrade(t, db, other.ID)

		trades, err := svc.ListTrades(user.ID, user.Role, TradeFilter{}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(trades) != 1 {
			t.Fatalf("expected 1 trade, got %d", len(trades))
		}
		if trades[0].UserID != user.ID {
			t.Errorf("expected own trade, got one owned by %s", trades[0].UserID)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		for i := 0; i < 5; i++ {
			testutil.CreateTestOpenTrade(t, db, user.ID)
		}

		page1, err := svc.ListTrades(user.ID, user.Role, TradeFilter{}, pagination.PageRequest{Page: 1, Limit: 2})
		testutil.AssertNoError(t, err)
		if len(page1) != 2 {
			t.Fatalf("expected 2 trades on page 1, got %d", len(page1))
		}

		page3, err := svc.ListTrades(user.ID, user.Role, TradeFilter{}, pagination.PageRequest{Page: 3, Limit: 2})
		testutil.AssertNoError(t, err)
		if len(page3) != 1 {
			t.Fatalf("expected 1 trade on page 3, got %d", len(page3))
		}
	})
}

func TestUpdateTrade(t *testing.T) {
	t.Run("closing_with_exit_price_computes_pnl", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, user.ID)

		closed := models.TradeStatusClosed
		updated, err := svc.UpdateTrade(user.ID, user.Role, trade.ID, TradePatch{
			ExitPrice: decPtr(t, "95"),
			Status:    &closed,
		})
		testutil.AssertNoError(t, err)

		// Fixture: long, entry 100, qty 10. (95-100)*10 = -50.
		testutil.AssertNullDecimalEqual(t, "-50", updated.ProfitLoss)
		testutil.AssertNullDecimalEqual(t, "-5", updated.ProfitLossPercent)
	})

	t.Run("closing_uses_existing_exit_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, user.ID)

		// Record the exit price first, status still open.
		updated, err := svc.UpdateTrade(user.ID, user.Role, trade.ID, TradePatch{ExitPrice: decPtr(t, "120")})
		testutil.AssertNoError(t, err)
		if updated.ProfitLoss.Valid {
			t.Fatal("open trade should have null profit/loss even with an exit price recorded")
		}

		closed := models.TradeStatusClosed
		updated, err = svc.UpdateTrade(user.ID, user.Role, trade.ID, TradePatch{Status: &closed})
		testutil.AssertNoError(t, err)
		testutil.AssertNullDecimalEqual(t, "200", updated.ProfitLoss)
	})

	t.Run("partial_update_preserves_other_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestClosedTrade(t, db, user.ID, "100.00")

		notes := "reviewed after close"
		updated, err := svc.UpdateTrade(user.ID, user.Role, trade.ID, TradePatch{Notes: &notes})
		testutil.AssertNoError(t, err)

		if updated.Notes != notes {
			t.Errorf("expected notes updated, got %q", updated.Notes)
		}
		if updated.Symbol != trade.Symbol {
			t.Errorf("expected symbol untouched, got %s", updated.Symbol)
		}
		// Notes don't feed the derivation, so the recorded value survives as is.
		testutil.AssertNullDecimalEqual(t, "100.00", updated.ProfitLoss)
	})

	t.Run("reopening_clears_pnl", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestClosedTrade(t, db, user.ID, "100.00")

		open := models.TradeStatusOpen
		updated, err := svc.UpdateTrade(user.ID, user.Role, trade.ID, TradePatch{Status: &open})
		testutil.AssertNoError(t, err)
		if updated.ProfitLoss.Valid || updated.ProfitLossPercent.Valid {
			t.Error("reopened trade should have null profit/loss")
		}
	})

	t.Run("other_users_trade_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, owner.ID)

		notes := "not yours"
		_, err := svc.UpdateTrade(intruder.ID, intruder.Role, trade.ID, TradePatch{Notes: &notes})
		testutil.AssertAppError(t, err, "TRADE_NOT_FOUND")
	})

	t.Run("rejects_invalid_post_patch_state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, user.ID)

		_, err := svc.UpdateTrade(user.ID, user.Role, trade.ID, TradePatch{Quantity: decPtr(t, "0")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteTrade(t *testing.T) {
	t.Run("owner_can_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, user.ID)

		testutil.AssertNoError(t, svc.DeleteTrade(user.ID, user.Role, trade.ID))

		_, err := svc.GetTrade(user.ID, user.Role, trade.ID)
		testutil.AssertAppError(t, err, "TRADE_NOT_FOUND")
	})

	t.Run("other_users_trade_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		trade := testutil.CreateTestOpenTrade(t, db, owner.ID)

		err := svc.DeleteTrade(intruder.ID, intruder.Role, trade.ID)
		testutil.AssertAppError(t, err, "TRADE_NOT_FOUND")

		// Trade survives the failed delete.
		_, err = svc.GetTrade(owner.ID, owner.Role, trade.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("missing_trade_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTradeService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteTrade(user.ID, user.Role, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "TRADE_NOT_FOUND")
	})
}
