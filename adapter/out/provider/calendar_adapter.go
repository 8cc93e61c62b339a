package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"mailpilot/pkg/apperr"
)

// CalendarAdapter implements out.CalendarProvider against the Google
// Calendar API.
type CalendarAdapter struct {
	config *oauth2.Config
}

// NewCalendarAdapter creates a calendar adapter over the shared OAuth
// config.
func NewCalendarAdapter(config *oauth2.Config) *CalendarAdapter {
	return &CalendarAdapter{config: config}
}

func (a *CalendarAdapter) getService(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}
	return calendar.NewService(ctx, option.WithTokenSource(
		a.config.TokenSource(ctx, token),
	))
}

// CreateEvent inserts a single event on the user's primary calendar and
// returns its link.
func (a *CalendarAdapter) CreateEvent(ctx context.Context, token *oauth2.Token, title, description string, start, end time.Time) (string, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return "", apperr.UpstreamFailed("calendar", fmt.Errorf("failed to build calendar service: %w", err))
	}

	event := &calendar.Event{
		Summary:     title,
		Description: description,
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}

	created, err := svc.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		return "", apperr.UpstreamFailed("calendar", fmt.Errorf("failed to insert event: %w", err))
	}
	return created.HtmlLink, nil
}
