package integration

import (
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterVerifyLogin(t *testing.T) {
	app := setupApp(t)

	// Step 1: Register. No session token is handed out yet.
	app.registerUser(t, "auth@test.com", "password123")

	// Step 2: Login before verification is refused with a distinct code.
	rec := app.request("POST", "/api/auth/login",
		`{"email":"auth@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before verification, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "EMAIL_NOT_VERIFIED" {
		t.Errorf("expected EMAIL_NOT_VERIFIED, got %v", errObj["code"])
	}

	// Step 3: Follow the emailed verification link.
	app.verifyLastEmail(t)

	// Step 4: Login now succeeds.
	token := app.loginUser(t, "auth@test.com", "password123")
	if token == "" {
		t.Fatal("expected non-empty session token")
	}

	// Step 5: The token grants access to the profile.
	rec = app.request("GET", "/api/auth/me", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" {
		t.Errorf("expected email auth@test.com, got %v", user["email"])
	}
	if user["emailVerified"] != true {
		t.Error("expected verified user")
	}
}

func TestAuthFlow_DuplicateEmail(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request("POST", "/api/auth/register",
		`{"email":"dup@test.com","password":"password123","firstName":"Test","lastName":"User"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "USER_EXISTS" {
		t.Errorf("expected USER_EXISTS, got %v", errObj["code"])
	}
}

func TestAuthFlow_WrongPassword(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "wrong@test.com", "password123")
	app.verifyLastEmail(t)

	rec := app.request("POST", "/api/auth/login",
		`{"email":"wrong@test.com","password":"not-the-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", errObj["code"])
	}
}

func TestAuthFlow_ResendInvalidatesOldToken(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "resend@test.com", "password123")
	firstMail := app.Mailer.Sent()[0]

	rec := app.request("POST", "/api/auth/resend-verification",
		`{"email":"resend@test.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resend failed: %d %s", rec.Code, rec.Body.String())
	}

	// The first token was overwritten by the resend and no longer matches.
	staleToken := firstMail.VerifyURL[len(firstMail.VerifyURL)-64:]
	rec = app.request("GET", "/api/auth/verify/"+staleToken, "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for stale token, got %d", rec.Code)
	}

	// The fresh token works.
	app.verifyLastEmail(t)
}

func TestAuthFlow_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/auth/me", "/api/trades", "/api/settings"} {
		rec := app.request("GET", path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for %s without token, got %d", path, rec.Code)
		}
	}

	rec := app.request("GET", "/api/auth/me", "", "garbage-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for malformed token, got %d", rec.Code)
	}
}

func TestAuthFlow_DeleteAccount(t *testing.T) {
	app := setupApp(t)

	token := app.registerVerifiedUser(t, "gone@test.com", "password123")

	// Seed a trade so the cascade has something to remove.
	rec := app.request("POST", "/api/trades",
		`{"symbol":"AAPL","type":"stock","direction":"long","entryPrice":100,"quantity":1,"entryDate":"2026-01-10"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("trade create failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", "/api/auth/delete-account", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	// Login no longer resolves the account; unknown email and wrong password
	// are indistinguishable.
	rec = app.request("POST", "/api/auth/login",
		`{"email":"gone@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after deletion, got %d", rec.Code)
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", errObj["code"])
	}

	// The email is immediately reusable.
	app.registerUser(t, "gone@test.com", "password456")
}

func TestAuthFlow_CompleteOnboarding(t *testing.T) {
	app := setupApp(t)

	token := app.registerVerifiedUser(t, "onboard@test.com", "password123")

	rec := app.request("POST", "/api/auth/complete-onboarding",
		`{"password":"brand-new-pass1","firstName":"Onboarded"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("onboarding failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["onboardingCompleted"] != true {
		t.Error("expected onboarding completed")
	}

	// The new password replaces the old one.
	app.loginUser(t, "onboard@test.com", "brand-new-pass1")
	rec = app.request("POST", "/api/auth/login",
		`{"email":"onboard@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected old password rejected, got %d", rec.Code)
	}
}
