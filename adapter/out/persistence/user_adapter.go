// Package persistence provides database adapters.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mailpilot/core/domain"
	"mailpilot/pkg/apperr"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// UserAdapter implements out.UserRepository using PostgreSQL.
type UserAdapter struct {
	db *sqlx.DB
}

// NewUserAdapter creates a new UserAdapter.
func NewUserAdapter(db *sqlx.DB) *UserAdapter {
	return &UserAdapter{db: db}
}

// EnsureSchema creates the users table when it does not exist yet.
func (a *UserAdapter) EnsureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
			id                  BIGSERIAL PRIMARY KEY,
			google_id           TEXT NOT NULL UNIQUE,
			email               TEXT NOT NULL UNIQUE,
			display_name        TEXT,
			avatar_url          TEXT,
			oauth_access_token  TEXT,
			oauth_refresh_token TEXT,
			oauth_token_expiry  TIMESTAMPTZ,
			persona             TEXT,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return apperr.DatabaseError("ensure schema", err)
	}
	return nil
}

// GetByID loads a user by primary key.
func (a *UserAdapter) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, google_id, email, display_name, avatar_url,
		       oauth_access_token, oauth_refresh_token, oauth_token_expiry,
		       persona, created_at, updated_at
		FROM users
		WHERE id = $1`

	if err := a.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.DatabaseError("get user by id", err)
	}
	return &user, nil
}

// GetByGoogleID loads a user by provider subject id.
func (a *UserAdapter) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, google_id, email, display_name, avatar_url,
		       oauth_access_token, oauth_refresh_token, oauth_token_expiry,
		       persona, created_at, updated_at
		FROM users
		WHERE google_id = $1`

	if err := a.db.GetContext(ctx, &user, query, googleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.DatabaseError("get user by google id", err)
	}
	return &user, nil
}

// Create inserts a new user and fills in its generated id.
func (a *UserAdapter) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (google_id, email, display_name, avatar_url,
		                   oauth_access_token, oauth_refresh_token, oauth_token_expiry, persona)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := a.db.QueryRowContext(ctx, query,
		user.GoogleID, user.Email, user.DisplayName, user.AvatarURL,
		user.OAuthAccessToken, user.OAuthRefreshToken, user.OAuthTokenExpiry, user.Persona,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a user with this identity or email already exists").WithError(err)
		}
		return apperr.DatabaseError("create user", err)
	}
	return nil
}

// Update overwrites the user's mutable fields.
func (a *UserAdapter) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, display_name = $3, avatar_url = $4,
		    oauth_access_token = $5, oauth_refresh_token = $6, oauth_token_expiry = $7,
		    updated_at = now()
		WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query,
		user.ID, user.Email, user.DisplayName, user.AvatarURL,
		user.OAuthAccessToken, user.OAuthRefreshToken, user.OAuthTokenExpiry,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a user with this email already exists").WithError(err)
		}
		return apperr.DatabaseError("update user", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperr.NotFound("user")
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdatePersona updates only the persona string.
func (a *UserAdapter) UpdatePersona(ctx context.Context, id int64, persona string) error {
	query := `UPDATE users SET persona = $2, updated_at = now() WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query, id, persona)
	if err != nil {
		return apperr.DatabaseError("update persona", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
