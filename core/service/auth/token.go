// Package auth implements bearer-token issuance and validation, and the
// login-completion upsert of the user record.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"mailpilot/core/domain"
	"mailpilot/core/port/out"
	"mailpilot/pkg/apperr"
)

// Service mints and validates session bearer tokens. Tokens are stateless
// HS256 JWTs signed with a single server secret; there is no refresh or
// revocation, the only remedy for an expired token is a fresh login.
type Service struct {
	users    out.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an authenticator.
func NewService(users out.UserRepository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Issue mints a signed bearer token for the user. The payload carries only
// the subject and expiry, never provider tokens or secrets.
func (s *Service) Issue(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Authenticate verifies the token's signature and expiry, then loads the
// subject's user. Every failure mode collapses to Unauthenticated.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthenticated("").WithError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthenticated("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, apperr.Unauthenticated("missing subject")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid subject")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthenticated("").WithError(err)
	}
	return user, nil
}

// CompleteLogin upserts the user keyed on the provider subject id. Display
// name, avatar, and OAuth tokens are overwritten on every login; the
// refresh token only when the provider reissued one. An email collision
// across two provider identities surfaces as a conflict, it never merges
// accounts.
func (s *Service) CompleteLogin(ctx context.Context, identity domain.GoogleIdentity, token *oauth2.Token) (*domain.User, error) {
	if identity.Subject == "" {
		return nil, apperr.BadRequest("provider identity is missing the subject id")
	}

	expiry := token.Expiry.UTC()
	name := identity.Name
	avatar := identity.AvatarURL

	existing, err := s.users.GetByGoogleID(ctx, identity.Subject)
	switch {
	case err == nil:
		existing.DisplayName = &name
		existing.AvatarURL = &avatar
		existing.OAuthAccessToken = &token.AccessToken
		if token.RefreshToken != "" {
			existing.OAuthRefreshToken = &token.RefreshToken
		}
		existing.OAuthTokenExpiry = &expiry
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	case apperr.IsCode(err, apperr.CodeNotFound):
		user := &domain.User{
			GoogleID:         identity.Subject,
			Email:            identity.Email,
			DisplayName:      &name,
			AvatarURL:        &avatar,
			OAuthAccessToken: &token.AccessToken,
			OAuthTokenExpiry: &expiry,
		}
		if token.RefreshToken != "" {
			user.OAuthRefreshToken = &token.RefreshToken
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil

	default:
		return nil, err
	}
}

// ProviderToken builds the OAuth token downstream provider clients consume
// from the user's cached credentials. Fails fast when no access token is
// cached.
func ProviderToken(u *domain.User) (*oauth2.Token, error) {
	if !u.HasMailCredentials() {
		return nil, apperr.BadRequest("user has not granted mail permissions")
	}
	token := &oauth2.Token{AccessToken: *u.OAuthAccessToken}
	if u.OAuthRefreshToken != nil {
		token.RefreshToken = *u.OAuthRefreshToken
	}
	if u.OAuthTokenExpiry != nil {
		token.Expiry = *u.OAuthTokenExpiry
	}
	return token, nil
}
