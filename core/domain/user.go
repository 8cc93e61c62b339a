package domain

import (
	"time"
)

// User is the single persisted entity: identity plus cached OAuth
// credentials and the free-text persona used for reply drafting.
type User struct {
	ID                int64      `json:"id" db:"id"`
	GoogleID          string     `json:"google_id" db:"google_id"`
	Email             string     `json:"email" db:"email"`
	DisplayName       *string    `json:"display_name,omitempty" db:"display_name"`
	AvatarURL         *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	OAuthAccessToken  *string    `json:"-" db:"oauth_access_token"`
	OAuthRefreshToken *string    `json:"-" db:"oauth_refresh_token"`
	OAuthTokenExpiry  *time.Time `json:"-" db:"oauth_token_expiry"`
	Persona           *string    `json:"persona,omitempty" db:"persona"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// HasMailCredentials reports whether mailbox/calendar operations may be
// attempted. An absent access token fails fast before any provider call.
func (u *User) HasMailCredentials() bool {
	return u.OAuthAccessToken != nil && *u.OAuthAccessToken != ""
}

// PersonaOrDefault returns the configured persona, or a neutral default.
func (u *User) PersonaOrDefault() string {
	if u.Persona != nil && *u.Persona != "" {
		return *u.Persona
	}
	return "a professional assistant"
}

// GoogleIdentity is the subset of the provider's userinfo response the
// login flow consumes.
type GoogleIdentity struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}
