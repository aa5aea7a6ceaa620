package services

import (
	"testing"

	"flowjournal/internal/testutil"
)

func TestComputeStats(t *testing.T) {
	t.Run("empty_ledger_is_all_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatsService(db)
		user := testutil.CreateTestUser(t, db)

		stats, err := svc.ComputeStats(user.ID, user.Role)
		testutil.AssertNoError(t, err)

		if stats.TotalTrades != 0 || stats.ClosedTrades != 0 || stats.OpenTrades != 0 {
			t.Errorf("expected zero counts, got %+v", stats)
		}
		testutil.AssertDecimalEqual(t, "0", stats.WinRate)
		testutil.AssertDecimalEqual(t, "0", stats.TotalProfitLoss)
		testutil.AssertDecimalEqual(t, "0", stats.BestTrade)
		testutil.AssertDecimalEqual(t, "0", stats.WorstTrade)
	})

	t.Run("mixed_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatsService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestClosedTrade(t, db, user.ID, "100.00")
		testutil.CreateTestClosedTrade(t, db, user.ID, "-50.00")
		testutil.CreateTestClosedTrade(t, db, user.ID, "0.00")
		testutil.CreateTestOpenTrade(t, db, user.ID)

		stats, err := svc.ComputeStats(user.ID, user.Role)
		testutil.AssertNoError(t, err)

		if stats.TotalTrades != 4 {
			t.Errorf("expected 4 total trades, got %d", stats.TotalTrades)
		}
		if stats.ClosedTrades != 3 {
			t.Errorf("expected 3 closed trades, got %d", stats.ClosedTrades)
		}
		if stats.OpenTrades != 1 {
			t.Errorf("expected 1 open trade, got %d", stats.OpenTrades)
		}
		// Break-even closes count as neither winning nor losing.
		if stats.WinningTrades != 1 || stats.LosingTrades != 1 {
			t.Errorf("expected 1 win and 1 loss, got %d and %d", stats.WinningTrades, stats.LosingTrades)
		}
		// 1 win out of 3 closed.
		testutil.AssertDecimalEqual(t, "33.33", stats.WinRate)
		testutil.AssertDecimalEqual(t, "50.00", stats.TotalProfitLoss)
		testutil.AssertDecimalEqual(t, "100.00", stats.AvgWin)
		testutil.AssertDecimalEqual(t, "-50.00", stats.AvgLoss)
		testutil.AssertDecimalEqual(t, "100.00", stats.BestTrade)
		testutil.AssertDecimalEqual(t, "-50.00", stats.WorstTrade)
	})

	t.Run("all_breakeven_best_and_worst_are_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatsService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestClosedTrade(t, db, user.ID, "0.00")
		testutil.CreateTestClosedTrade(t, db, user.ID, "0.00")

		stats, err := svc.ComputeStats(user.ID, user.Role)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "0", stats.WinRate)
		testutil.AssertDecimalEqual(t, "0", stats.BestTrade)
		testutil.AssertDecimalEqual(t, "0", stats.WorstTrade)
	})

	t.Run("scoped_to_caller", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatsService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		testutil.CreateTestClosedTrade(t, db, user.ID, "100.00")
		testutil.CreateTestClosedTrade(t, db, other.ID, "900.00")

		stats, err := svc.ComputeStats(user.ID, user.Role)
		testutil.AssertNoError(t, err)
		if stats.TotalTrades != 1 {
			t.Errorf("expected 1 trade in scope, got %d", stats.TotalTrades)
		}
		testutil.AssertDecimalEqual(t, "100.00", stats.TotalProfitLoss)
	})

	t.Run("admin_aggregates_over_all_trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatsService(db)
		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)

		testutil.CreateTestClosedTrade(t, db, user.ID, "100.00")
		testutil.CreateTestClosedTrade(t, db, admin.ID, "25.00")

		stats, err := svc.ComputeStats(admin.ID, admin.Role)
		testutil.AssertNoError(t, err)
		if stats.TotalTrades != 2 {
			t.Errorf("expected 2 trades in admin scope, got %d", stats.TotalTrades)
		}
		testutil.AssertDecimalEqual(t, "125.00", stats.TotalProfitLoss)
	})
}
