package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"flowjournal/internal/auth"
	"flowjournal/internal/logger"
	"flowjournal/internal/services"
)

const (
	oauthStateCookie = "oauth_state"
	googleUserinfo   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthHandler handles the Google OAuth login flow.
type OAuthHandler struct {
	oauthService services.OAuthServicer
	issuer       *auth.TokenIssuer
	config       *oauth2.Config
	frontendURL  string
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(oauthService services.OAuthServicer, issuer *auth.TokenIssuer, config *oauth2.Config, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		issuer:       issuer,
		config:       config,
		frontendURL:  frontendURL,
	}
}

// googleUserinfoResponse mirrors the fields of Google's userinfo endpoint
// that the login flow consumes.
type googleUserinfoResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// GoogleLogin starts the Google OAuth flow
// @Summary     Start Google login
// @Description Redirect the browser to Google's consent screen.
// @Tags        auth
// @Success     302 {string} string "Redirect to Google"
// @Router      /auth/google [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		h.redirectWithError(c, "auth_failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.config.AuthCodeURL(state))
}

// GoogleCallback completes the Google OAuth flow
// @Summary     Google login callback
// @Description Exchange the authorization code, link or create the account, and redirect to the frontend with a session token.
// @Tags        auth
// @Success     302 {string} string "Redirect to frontend"
// @Router      /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		h.redirectWithError(c, "invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		h.redirectWithError(c, "auth_failed")
		return
	}

	token, err := h.config.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Get().Warnw("oauth code exchange failed", "error", err)
		h.redirectWithError(c, "auth_failed")
		return
	}

	profile, err := h.fetchProfile(c, token)
	if err != nil {
		logger.Get().Warnw("oauth userinfo fetch failed", "error", err)
		h.redirectWithError(c, "auth_failed")
		return
	}

	user, err := h.oauthService.LoginOrCreate(*profile)
	if err != nil {
		logger.Get().Errorw("oauth login failed", "error", err)
		h.redirectWithError(c, "auth_failed")
		return
	}

	sessionToken, err := h.issuer.Issue(user)
	if err != nil {
		logger.Get().Errorw("oauth token issue failed", "error", err)
		h.redirectWithError(c, "auth_failed")
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?token="+url.QueryEscape(sessionToken))
}

func (h *OAuthHandler) fetchProfile(c *gin.Context, token *oauth2.Token) (*services.GoogleProfile, error) {
	client := h.config.Client(c.Request.Context(), token)
	resp, err := client.Get(googleUserinfo)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info googleUserinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	return &services.GoogleProfile{
		Subject:    info.ID,
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
	}, nil
}

func (h *OAuthHandler) redirectWithError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?error="+url.QueryEscape(reason))
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
