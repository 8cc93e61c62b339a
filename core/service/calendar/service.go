// Package calendar executes calendar actions against the provider.
package calendar

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"mailpilot/core/domain"
	"mailpilot/core/port/out"
	"mailpilot/pkg/logger"
)

// Service inserts events on the user's primary calendar.
type Service struct {
	provider out.CalendarProvider
}

// NewService creates a calendar action executor.
func NewService(provider out.CalendarProvider) *Service {
	return &Service{provider: provider}
}

// CreateEvent issues a single insert. A provider-side failure is a
// recoverable, reportable outcome, returned as a tagged result rather than
// raised past this boundary.
func (s *Service) CreateEvent(ctx context.Context, token *oauth2.Token, title, description string, start, end time.Time) domain.EventResult {
	link, err := s.provider.CreateEvent(ctx, token, title, description, start, end)
	if err != nil {
		logger.WithError(err).Error("calendar event insert failed")
		return domain.EventResult{Error: err.Error()}
	}
	return domain.EventResult{Link: link}
}
