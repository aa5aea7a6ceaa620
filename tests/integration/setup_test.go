package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flowjournal/internal/auth"
	"flowjournal/internal/handlers"
	"flowjournal/internal/logger"
	"flowjournal/internal/middleware"
	"flowjournal/internal/models"
	"flowjournal/internal/services"
	"flowjournal/internal/testutil"
	"flowjournal/internal/validator"
)

const frontendURL = "http://localhost:5173"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Mailer *testutil.StubMailer
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Strategy{},
		&models.Trade{},
		&models.UserSettings{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	stubMailer := &testutil.StubMailer{}
	issuer := auth.NewTokenIssuer("integration-test-secret", time.Hour)

	// Services
	verificationService := services.NewVerificationService(db, stubMailer, frontendURL)
	userService := services.NewUserService(db, verificationService)
	tradeService := services.NewTradeService(db)
	statsService := services.NewStatsService(db)
	settingsService := services.NewSettingsService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, verificationService, issuer)
	tradeHandler := handlers.NewTradeHandler(tradeService, statsService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/verify/:token", authHandler.VerifyEmail)
	authRoutes.POST("/resend-verification", authHandler.ResendVerification)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(issuer))

	protected.GET("/auth/me", authHandler.GetMe)
	protected.POST("/auth/complete-onboarding", authHandler.CompleteOnboarding)
	protected.DELETE("/auth/delete-account", authHandler.DeleteAccount)

	trades := protected.Group("/trades")
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("", tradeHandler.ListTrades)
	trades.GET("/stats", tradeHandler.GetStats)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.PUT("/:id", tradeHandler.UpdateTrade)
	trades.DELETE("/:id", tradeHandler.DeleteTrade)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)

	return &testApp{DB: db, Router: router, Mailer: stubMailer}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user. No session token is returned at this
// stage; verification has to happen first.
func (app *testApp) registerUser(t *testing.T, email, password string) (userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"firstName":"Test","lastName":"User"}`, email, password)
	rec := app.request("POST", "/api/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return user["id"].(string)
}

// verifyLastEmail follows the verification link from the most recent email.
func (app *testApp) verifyLastEmail(t *testing.T) {
	t.Helper()
	sent := app.Mailer.Sent()
	if len(sent) == 0 {
		t.Fatal("no verification email was sent")
	}
	link := sent[len(sent)-1].VerifyURL
	token := link[strings.LastIndex(link, "=")+1:]

	rec := app.request("GET", "/api/auth/verify/"+token, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %d %s", rec.Code, rec.Body.String())
	}
}

// loginUser logs in and returns the session token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// registerVerifiedUser runs the full register-verify-login flow and returns
// a usable session token.
func (app *testApp) registerVerifiedUser(t *testing.T, email, password string) string {
	t.Helper()
	app.registerUser(t, email, password)
	app.verifyLastEmail(t)
	return app.loginUser(t, email, password)
}
