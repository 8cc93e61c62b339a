// Package http contains the inbound HTTP handlers.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"

	"mailpilot/core/domain"
	"mailpilot/core/port/out"
	"mailpilot/core/service/auth"
	"mailpilot/pkg/logger"
)

// loginStateTTL bounds how long an issued OAuth state nonce stays valid.
const loginStateTTL = 10 * time.Minute

// IdentityFetcher resolves the provider identity behind an exchanged token.
type IdentityFetcher func(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (domain.GoogleIdentity, error)

// AuthHandler drives the browser OAuth login flow. Both callback outcomes
// are redirects into the client app; the API never renders a login page.
type AuthHandler struct {
	oauth       *oauth2.Config
	authService *auth.Service
	identity    IdentityFetcher
	stateStore  out.LoginStateStore
	clientURL   string
}

// NewAuthHandler creates the login flow handler. stateStore may be nil, in
// which case state validation is disabled.
func NewAuthHandler(oauth *oauth2.Config, authService *auth.Service, identity IdentityFetcher, stateStore out.LoginStateStore, clientURL string) *AuthHandler {
	return &AuthHandler{
		oauth:       oauth,
		authService: authService,
		identity:    identity,
		stateStore:  stateStore,
		clientURL:   clientURL,
	}
}

func (h *AuthHandler) Register(app fiber.Router) {
	authGroup := app.Group("/auth")
	authGroup.Get("/login", h.Login)
	authGroup.Get("/callback", h.Callback)
}

func generateSecureState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate login state: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Login redirects the browser to the provider consent screen.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state, err := generateSecureState()
	if err != nil {
		logger.WithError(err).Error("login state generation failed")
		return h.redirectError(c)
	}

	if h.stateStore != nil {
		if err := h.stateStore.Store(c.Context(), state, loginStateTTL); err != nil {
			logger.WithError(err).Error("login state store failed")
			return h.redirectError(c)
		}
	}

	authURL := h.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback completes the login: exchange the code, resolve the identity,
// upsert the user, mint a session token, and hand the browser back to the
// client app. Every failure lands on the client's login error page; no
// failure detail leaks into the redirect.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error: %s", errParam)
		return h.redirectError(c)
	}

	code := c.Query("code")
	if code == "" {
		logger.Warn("oauth callback missing authorization code")
		return h.redirectError(c)
	}

	if h.stateStore != nil {
		if err := h.stateStore.Validate(c.Context(), c.Query("state")); err != nil {
			logger.WithError(err).Warn("oauth callback state validation failed")
			return h.redirectError(c)
		}
	}

	token, err := h.oauth.Exchange(c.Context(), code)
	if err != nil {
		logger.WithError(err).Error("oauth code exchange failed")
		return h.redirectError(c)
	}

	identity, err := h.identity(c.Context(), h.oauth, token)
	if err != nil {
		logger.WithError(err).Error("oauth identity fetch failed")
		return h.redirectError(c)
	}

	user, err := h.authService.CompleteLogin(c.Context(), identity, token)
	if err != nil {
		logger.WithError(err).Error("login completion failed")
		return h.redirectError(c)
	}

	sessionToken, err := h.authService.Issue(user.ID)
	if err != nil {
		logger.WithError(err).Error("session token issuance failed")
		return h.redirectError(c)
	}

	logger.WithField("user_id", user.ID).Info("login completed")
	return c.Redirect(h.clientURL+"/dashboard?token="+url.QueryEscape(sessionToken), fiber.StatusFound)
}

func (h *AuthHandler) redirectError(c *fiber.Ctx) error {
	return c.Redirect(h.clientURL+"/login/error", fiber.StatusFound)
}
