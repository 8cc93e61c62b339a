package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type fakeCalendarProvider struct {
	link string
	err  error

	gotTitle string
	gotStart time.Time
	gotEnd   time.Time
}

func (f *fakeCalendarProvider) CreateEvent(ctx context.Context, token *oauth2.Token, title, description string, start, end time.Time) (string, error) {
	f.gotTitle = title
	f.gotStart = start
	f.gotEnd = end
	return f.link, f.err
}

func TestCreateEventSuccess(t *testing.T) {
	provider := &fakeCalendarProvider{link: "https://calendar.example.com/event/1"}
	svc := NewService(provider)

	start := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	result := svc.CreateEvent(context.Background(), &oauth2.Token{AccessToken: "t"}, "Team sync", "weekly", start, end)
	if !result.OK() {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.Link != provider.link {
		t.Errorf("Link = %q", result.Link)
	}
	if provider.gotTitle != "Team sync" || !provider.gotStart.Equal(start) || !provider.gotEnd.Equal(end) {
		t.Errorf("provider received %q %v %v", provider.gotTitle, provider.gotStart, provider.gotEnd)
	}
}

func TestCreateEventFailureIsTagged(t *testing.T) {
	provider := &fakeCalendarProvider{err: fmt.Errorf("insufficient calendar scope")}
	svc := NewService(provider)

	result := svc.CreateEvent(context.Background(), &oauth2.Token{}, "Title", "", time.Now(), time.Now().Add(time.Hour))
	if result.OK() {
		t.Fatal("result reports success on provider failure")
	}
	if result.Error == "" || result.Link != "" {
		t.Errorf("result = %+v, want tagged error and no link", result)
	}
}
