// Package out defines the outbound ports the core services depend on.
package out

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"mailpilot/core/domain"
)

// UserRepository persists the single user entity.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	UpdatePersona(ctx context.Context, id int64, persona string) error
}

// MailProvider is the mailbox side of the provider API.
type MailProvider interface {
	// ListInbox returns envelope metadata for the most recent inbox
	// messages. Bodies and attachments are not populated.
	ListInbox(ctx context.Context, token *oauth2.Token, maxResults int64) ([]domain.Envelope, error)
	GetMessage(ctx context.Context, token *oauth2.Token, messageID string) (*domain.Envelope, error)
	GetThread(ctx context.Context, token *oauth2.Token, threadID string) ([]domain.ThreadMessage, error)
	GetAttachment(ctx context.Context, token *oauth2.Token, messageID, attachmentID string) ([]byte, error)
	Send(ctx context.Context, token *oauth2.Token, to, subject, body string) (string, error)
}

// CalendarProvider is the calendar side of the provider API.
type CalendarProvider interface {
	CreateEvent(ctx context.Context, token *oauth2.Token, title, description string, start, end time.Time) (string, error)
}

// Completer is the hosted model client. Implementations must be safe for
// concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LoginStateStore stores one-shot OAuth state nonces for CSRF protection.
// A nil store disables validation.
type LoginStateStore interface {
	Store(ctx context.Context, state string, ttl time.Duration) error
	// Validate consumes the state; a second call with the same value fails.
	Validate(ctx context.Context, state string) error
}
