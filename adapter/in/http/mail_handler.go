package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailpilot/core/domain"
	"mailpilot/core/port/out"
	"mailpilot/core/service/ai"
	"mailpilot/core/service/auth"
	mailsvc "mailpilot/core/service/mail"
	"mailpilot/infra/middleware"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/logger"
	"mailpilot/pkg/response"
)

// MailHandler serves mailbox reads, attachment summarization, and send.
type MailHandler struct {
	provider     out.MailProvider
	extractor    *mailsvc.Extractor
	orchestrator *ai.Orchestrator
	maxResults   int64
}

func NewMailHandler(provider out.MailProvider, extractor *mailsvc.Extractor, orchestrator *ai.Orchestrator, maxResults int) *MailHandler {
	return &MailHandler{
		provider:     provider,
		extractor:    extractor,
		orchestrator: orchestrator,
		maxResults:   int64(maxResults),
	}
}

func (h *MailHandler) Register(app fiber.Router) {
	mail := app.Group("/mail")
	mail.Get("/inbox", h.Inbox)
	mail.Get("/message/:id", h.Message)
	mail.Post("/message/:id/attachment/:attachmentID/summarize", h.SummarizeAttachment)
	mail.Post("/send", h.Send)
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

type attachmentSummaryResponse struct {
	Filename string         `json:"filename"`
	Summary  domain.Summary `json:"summary"`
}

// Inbox lists recent inbox envelopes with headers and snippets only.
func (h *MailHandler) Inbox(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	token, err := auth.ProviderToken(user)
	if err != nil {
		return err
	}

	envelopes, err := h.provider.ListInbox(c.Context(), token, h.maxResults)
	if err != nil {
		return err
	}
	return response.OK(c, envelopes)
}

// Message returns one message with its flattened body and attachment list.
func (h *MailHandler) Message(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	token, err := auth.ProviderToken(user)
	if err != nil {
		return err
	}

	envelope, err := h.provider.GetMessage(c.Context(), token, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, envelope)
}

// SummarizeAttachment downloads one attachment, extracts its text, and
// summarizes it. Extraction failures are reportable outcomes for the user,
// not request failures: the response carries the diagnostic in the summary
// error slot with a 200.
func (h *MailHandler) SummarizeAttachment(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	token, err := auth.ProviderToken(user)
	if err != nil {
		return err
	}

	messageID := c.Params("id")
	attachmentID := c.Params("attachmentID")

	envelope, err := h.provider.GetMessage(c.Context(), token, messageID)
	if err != nil {
		return err
	}
	var meta *domain.Attachment
	for i := range envelope.Attachments {
		if envelope.Attachments[i].ID == attachmentID {
			meta = &envelope.Attachments[i]
			break
		}
	}
	if meta == nil {
		return apperr.NotFound("attachment")
	}

	data, err := h.provider.GetAttachment(c.Context(), token, messageID, attachmentID)
	if err != nil {
		return err
	}

	text, err := h.extractor.ExtractText(meta.MimeType, data, meta.Filename)
	if err != nil {
		var notPDF *mailsvc.NotPDFError
		var unreadable *mailsvc.UnreadableError
		if errors.As(err, &notPDF) || errors.As(err, &unreadable) {
			logger.WithError(err).Warn("attachment text extraction failed for %q", meta.Filename)
			return response.OK(c, attachmentSummaryResponse{
				Filename: meta.Filename,
				Summary: domain.Summary{
					ActionItems: []string{},
					KeyDates:    []string{},
					Error:       err.Error(),
				},
			})
		}
		return err
	}

	summary, err := h.orchestrator.Summarize(c.Context(), text, domain.SummarySingle)
	if err != nil {
		return err
	}
	return response.OK(c, attachmentSummaryResponse{
		Filename: meta.Filename,
		Summary:  summary,
	})
}

// Send sends a plain-text email from the user's account.
func (h *MailHandler) Send(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	token, err := auth.ProviderToken(user)
	if err != nil {
		return err
	}

	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}
	if strings.TrimSpace(req.To) == "" {
		return apperr.MissingField("to")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return apperr.MissingField("subject")
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperr.MissingField("body")
	}

	messageID, err := h.provider.Send(c.Context(), token, req.To, req.Subject, req.Body)
	if err != nil {
		return err
	}

	logger.WithField("user_id", user.ID).Info("email sent")
	return response.OK(c, sendResponse{MessageID: messageID})
}
