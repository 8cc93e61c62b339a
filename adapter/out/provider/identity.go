package provider

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"mailpilot/core/domain"
	"mailpilot/pkg/apperr"
)

// FetchIdentity resolves the authenticated user's Google identity after a
// code exchange.
func FetchIdentity(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (domain.GoogleIdentity, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(
		config.TokenSource(ctx, token),
	))
	if err != nil {
		return domain.GoogleIdentity{}, apperr.OAuthFailed("google", fmt.Errorf("failed to build userinfo service: %w", err))
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return domain.GoogleIdentity{}, apperr.OAuthFailed("google", fmt.Errorf("failed to fetch userinfo: %w", err))
	}
	if info.Id == "" {
		return domain.GoogleIdentity{}, apperr.OAuthFailed("google", fmt.Errorf("userinfo response is missing the subject id"))
	}

	return domain.GoogleIdentity{
		Subject:   info.Id,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
