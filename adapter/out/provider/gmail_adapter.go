// Package provider implements the Google mail and calendar adapters.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"mailpilot/core/domain"
	mailsvc "mailpilot/core/service/mail"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/logger"
)

// fetchConcurrency bounds the parallel metadata fetch used by ListInbox.
const fetchConcurrency = 10

// NewOAuthConfig builds the OAuth config shared by login and both
// providers.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			gmail.GmailModifyScope,
			"https://www.googleapis.com/auth/calendar.events",
		},
		Endpoint: google.Endpoint,
	}
}

// GmailAdapter implements out.MailProvider against the Gmail API.
type GmailAdapter struct {
	config *oauth2.Config
	cb     *gobreaker.CircuitBreaker
}

// NewGmailAdapter creates a Gmail adapter over the shared OAuth config.
func NewGmailAdapter(config *oauth2.Config) *GmailAdapter {
	cbSettings := gobreaker.Settings{
		Name:     "gmail-api",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &GmailAdapter{
		config: config,
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

func (a *GmailAdapter) getService(ctx context.Context, token *oauth2.Token) (*gmail.Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}
	return gmail.NewService(ctx, option.WithTokenSource(
		a.config.TokenSource(ctx, token),
	))
}

// ListInbox lists recent inbox messages and fetches their metadata with
// bounded concurrency, preserving provider order.
func (a *GmailAdapter) ListInbox(ctx context.Context, token *oauth2.Token, maxResults int64) ([]domain.Envelope, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, a.wrapError(err, "failed to build gmail service")
	}

	var listed *gmail.ListMessagesResponse
	cbErr := a.execute("ListInbox", func() error {
		var apiErr error
		listed, apiErr = svc.Users.Messages.List("me").Q("in:inbox").MaxResults(maxResults).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to list inbox")
	}
	if len(listed.Messages) == 0 {
		return []domain.Envelope{}, nil
	}

	envelopes := make([]domain.Envelope, len(listed.Messages))
	var wg sync.WaitGroup
	sem := make(chan struct{}, fetchConcurrency)

	for i, ref := range listed.Messages {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			msg, err := svc.Users.Messages.Get("me", id).
				Format("metadata").
				MetadataHeaders("Subject", "From").
				Context(ctx).Do()
			if err != nil {
				logger.WithError(err).Warn("skipping inbox message %s", id)
				return
			}
			root := convertPart(msg.Payload)
			flat := mailsvc.Flatten(root)
			envelopes[i] = domain.Envelope{
				ID:       msg.Id,
				ThreadID: msg.ThreadId,
				Subject:  mailsvc.HeaderValue(flat, "Subject", "No Subject"),
				Sender:   mailsvc.HeaderValue(flat, "From", "Unknown Sender"),
				Snippet:  msg.Snippet,
			}
		}(i, ref.Id)
	}
	wg.Wait()

	// Drop entries whose fetch failed.
	result := envelopes[:0]
	for _, env := range envelopes {
		if env.ID != "" {
			result = append(result, env)
		}
	}
	return result, nil
}

// GetMessage retrieves a single message in full and normalizes it.
func (a *GmailAdapter) GetMessage(ctx context.Context, token *oauth2.Token, messageID string) (*domain.Envelope, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, a.wrapError(err, "failed to build gmail service")
	}

	var msg *gmail.Message
	cbErr := a.execute("GetMessage", func() error {
		var apiErr error
		msg, apiErr = svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to get message")
	}

	env := mailsvc.BuildEnvelope(msg.Id, msg.ThreadId, msg.Snippet, convertPart(msg.Payload))
	return &env, nil
}

// GetThread returns a thread's messages in provider order.
func (a *GmailAdapter) GetThread(ctx context.Context, token *oauth2.Token, threadID string) ([]domain.ThreadMessage, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, a.wrapError(err, "failed to build gmail service")
	}

	var thread *gmail.Thread
	cbErr := a.execute("GetThread", func() error {
		var apiErr error
		thread, apiErr = svc.Users.Threads.Get("me", threadID).Format("full").Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to get thread")
	}

	messages := make([]domain.ThreadMessage, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		root := convertPart(msg.Payload)
		flat := mailsvc.Flatten(root)
		html, plain := mailsvc.ExtractBody(root)
		messages = append(messages, domain.ThreadMessage{
			Sender: mailsvc.HeaderValue(flat, "From", "Unknown Sender"),
			Date:   mailsvc.HeaderValue(flat, "Date", ""),
			Plain:  plain,
			HTML:   html,
		})
	}
	return messages, nil
}

// GetAttachment downloads and decodes attachment bytes.
func (a *GmailAdapter) GetAttachment(ctx context.Context, token *oauth2.Token, messageID, attachmentID string) ([]byte, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return nil, a.wrapError(err, "failed to build gmail service")
	}

	var att *gmail.MessagePartBody
	cbErr := a.execute("GetAttachment", func() error {
		var apiErr error
		att, apiErr = svc.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to get attachment")
	}
	if att.Data == "" {
		return nil, apperr.UpstreamFailed("gmail", fmt.Errorf("attachment data not found in API response"))
	}

	data, err := decodeBase64URL(att.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment: %w", err)
	}
	return data, nil
}

// Send sends a plain-text email and returns the provider message id.
func (a *GmailAdapter) Send(ctx context.Context, token *oauth2.Token, to, subject, body string) (string, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return "", a.wrapError(err, "failed to build gmail service")
	}

	raw := buildRawMessage(to, subject, body)
	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	var sent *gmail.Message
	cbErr := a.execute("Send", func() error {
		var apiErr error
		sent, apiErr = svc.Users.Messages.Send("me", gmailMsg).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return "", a.wrapError(cbErr, "failed to send message")
	}
	return sent.Id, nil
}

// buildRawMessage assembles an RFC 2822 plain-text message.
func buildRawMessage(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

// convertPart maps the Gmail part tree onto the extractor's Part type,
// decoding inline body data.
func convertPart(p *gmail.MessagePart) *mailsvc.Part {
	if p == nil {
		return nil
	}

	part := &mailsvc.Part{
		MimeType: p.MimeType,
		Filename: p.Filename,
	}
	for _, h := range p.Headers {
		part.Headers = append(part.Headers, mailsvc.Header{Name: h.Name, Value: h.Value})
	}
	if p.Body != nil {
		part.AttachmentID = p.Body.AttachmentId
		if p.Body.Data != "" {
			if data, err := decodeBase64URL(p.Body.Data); err == nil {
				part.BodyData = data
			}
		}
	}
	for _, child := range p.Parts {
		if converted := convertPart(child); converted != nil {
			part.Children = append(part.Children, converted)
		}
	}
	return part
}

// decodeBase64URL accepts both padded and unpadded base64url, which Gmail
// mixes across endpoints.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.URLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// execute wraps an API call with circuit breaker protection so a degraded
// Gmail API does not cascade.
func (a *GmailAdapter) execute(operation string, fn func() error) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok {
				switch apiErr.Code {
				case 500, 502, 503, 429:
					return nil, err
				default:
					// Client errors must not trip the circuit.
					return nil, &nonCircuitError{err: err}
				}
			}
			return nil, err
		}
		return nil, nil
	})

	if nce, ok := err.(*nonCircuitError); ok {
		return nce.err
	}
	if err != nil {
		logger.WithError(err).Warn("gmail circuit breaker: operation=%s state=%s", operation, a.cb.State().String())
	}
	return err
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}

func (a *GmailAdapter) wrapError(err error, msg string) error {
	return apperr.UpstreamFailed("gmail", fmt.Errorf("%s: %w", msg, err))
}
