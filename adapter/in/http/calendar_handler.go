package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"mailpilot/core/service/ai"
	"mailpilot/core/service/auth"
	"mailpilot/core/service/calendar"
	"mailpilot/infra/middleware"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/response"
)

// CalendarHandler turns natural-language date phrases into calendar events.
type CalendarHandler struct {
	orchestrator *ai.Orchestrator
	calendar     *calendar.Service
}

func NewCalendarHandler(orchestrator *ai.Orchestrator, calendarService *calendar.Service) *CalendarHandler {
	return &CalendarHandler{
		orchestrator: orchestrator,
		calendar:     calendarService,
	}
}

func (h *CalendarHandler) Register(app fiber.Router) {
	cal := app.Group("/calendar")
	cal.Post("/event", h.CreateEvent)
}

type createEventRequest struct {
	Title       string `json:"title"`
	DatePhrase  string `json:"date_phrase"`
	Description string `json:"description"`
	// EmailContext disambiguates relative phrases ("the Friday we discussed").
	EmailContext string `json:"email_context"`
}

type createEventResponse struct {
	Link  string    `json:"link,omitempty"`
	Error string    `json:"error,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CreateEvent resolves the date phrase against today and inserts a one-hour
// event on the user's primary calendar. A provider-side insert failure is
// reported in the payload; only date resolution failures reject the request.
func (h *CalendarHandler) CreateEvent(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	token, err := auth.ProviderToken(user)
	if err != nil {
		return err
	}

	var req createEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperr.MissingField("title")
	}
	if strings.TrimSpace(req.DatePhrase) == "" {
		return apperr.MissingField("date_phrase")
	}

	start, end, err := h.orchestrator.ParseDateTime(c.Context(), time.Now(), req.DatePhrase, req.EmailContext)
	if err != nil {
		return err
	}

	result := h.calendar.CreateEvent(c.Context(), token, req.Title, req.Description, start, end)
	return response.OK(c, createEventResponse{
		Link:  result.Link,
		Error: result.Error,
		Start: start,
		End:   end,
	})
}
