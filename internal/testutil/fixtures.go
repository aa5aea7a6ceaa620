package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"flowjournal/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password behind every user fixture.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a verified user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a verified user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:         email,
		Password:      string(hash),
		FirstName:     "Test",
		LastName:      "User",
		Role:          models.RoleTrader,
		EmailVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates a verified user with the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	user.Role = models.RoleAdmin
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("failed to promote test user to admin: %v", err)
	}
	return user
}

// CreateTestUnverifiedUser creates an unverified user with an outstanding
// verification token valid for 24 hours.
func CreateTestUnverifiedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	token := fmt.Sprintf("verify-token-%d", nextID())
	expires := time.Now().Add(24 * time.Hour)
	user := &models.User{
		Email:                    fmt.Sprintf("unverified%d@test.com", nextID()),
		Password:                 string(hash),
		FirstName:                "Test",
		LastName:                 "User",
		Role:                     models.RoleTrader,
		EmailVerified:            false,
		VerificationToken:        &token,
		VerificationTokenExpires: &expires,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create unverified test user: %v", err)
	}
	return user
}

// CreateTestStrategy creates a strategy owned by the given user.
func CreateTestStrategy(t *testing.T, db *gorm.DB, userID string) *models.Strategy {
	t.Helper()

	strategy := &models.Strategy{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Strategy %d", nextID()),
		Description: "Buy support, sell resistance",
	}
	if err := db.Create(strategy).Error; err != nil {
		t.Fatalf("failed to create test strategy: %v", err)
	}
	return strategy
}

// CreateTestOpenTrade creates an open long stock trade for the given user.
func CreateTestOpenTrade(t *testing.T, db *gorm.DB, userID string) *models.Trade {
	t.Helper()

	trade := &models.Trade{
		UserID:     userID,
		Symbol:     fmt.Sprintf("TST%d", nextID()),
		Type:       models.TradeTypeStock,
		Direction:  models.TradeDirectionLong,
		EntryPrice: decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		EntryDate:  time.Now().Add(-24 * time.Hour),
		Status:     models.TradeStatusOpen,
	}
	if err := db.Create(trade).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return trade
}

// CreateTestClosedTrade creates a closed trade with the given realized
// profit/loss already recorded.
func CreateTestClosedTrade(t *testing.T, db *gorm.DB, userID string, profitLoss string) *models.Trade {
	t.Helper()

	pl, err := decimal.NewFromString(profitLoss)
	if err != nil {
		t.Fatalf("invalid profitLoss %q: %v", profitLoss, err)
	}

	entry := decimal.NewFromInt(100)
	qty := decimal.NewFromInt(10)
	exit := entry.Add(pl.Div(qty))
	exitDate := time.Now()
	trade := &models.Trade{
		UserID:            userID,
		Symbol:            fmt.Sprintf("TST%d", nextID()),
		Type:              models.TradeTypeStock,
		Direction:         models.TradeDirectionLong,
		EntryPrice:        entry,
		ExitPrice:         decimal.NewNullDecimal(exit),
		Quantity:          qty,
		EntryDate:         time.Now().Add(-24 * time.Hour),
		ExitDate:          &exitDate,
		ProfitLoss:        decimal.NewNullDecimal(pl),
		ProfitLossPercent: decimal.NewNullDecimal(pl.Div(entry.Mul(qty)).Mul(decimal.NewFromInt(100)).Round(2)),
		Status:            models.TradeStatusClosed,
	}
	if err := db.Create(trade).Error; err != nil {
		t.Fatalf("failed to create closed test trade: %v", err)
	}
	return trade
}
