package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailpilot/core/domain"
	"mailpilot/core/port/out"
	"mailpilot/core/service/ai"
	"mailpilot/core/service/auth"
	mailsvc "mailpilot/core/service/mail"
	"mailpilot/infra/middleware"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/response"
)

// AIHandler serves summarization and reply drafting.
type AIHandler struct {
	orchestrator *ai.Orchestrator
	provider     out.MailProvider
}

func NewAIHandler(orchestrator *ai.Orchestrator, provider out.MailProvider) *AIHandler {
	return &AIHandler{
		orchestrator: orchestrator,
		provider:     provider,
	}
}

func (h *AIHandler) Register(app fiber.Router) {
	aiGroup := app.Group("/ai")
	aiGroup.Post("/summarize", h.Summarize)
	aiGroup.Post("/reply", h.Reply)
}

type summarizeRequest struct {
	// Exactly one source: a thread id, a message id, or raw text.
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

type replyRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

// Summarize produces a structured summary. A thread id summarizes the whole
// conversation; a message id or raw text summarizes a single message.
func (h *AIHandler) Summarize(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req summarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	switch {
	case strings.TrimSpace(req.ThreadID) != "":
		token, err := auth.ProviderToken(user)
		if err != nil {
			return err
		}
		messages, err := h.provider.GetThread(c.Context(), token, req.ThreadID)
		if err != nil {
			return err
		}
		summary, err := h.orchestrator.Summarize(c.Context(), mailsvc.ThreadText(messages), domain.SummaryThread)
		if err != nil {
			return err
		}
		return response.OK(c, summary)

	case strings.TrimSpace(req.MessageID) != "":
		token, err := auth.ProviderToken(user)
		if err != nil {
			return err
		}
		envelope, err := h.provider.GetMessage(c.Context(), token, req.MessageID)
		if err != nil {
			return err
		}
		summary, err := h.orchestrator.Summarize(c.Context(), mailsvc.StripHTML(envelope.Body), domain.SummarySingle)
		if err != nil {
			return err
		}
		return response.OK(c, summary)

	default:
		summary, err := h.orchestrator.Summarize(c.Context(), req.Text, domain.SummarySingle)
		if err != nil {
			return err
		}
		return response.OK(c, summary)
	}
}

// Reply drafts an email reply in the user's persona. mode "regenerate"
// requests a noticeably different version of a previous draft.
func (h *AIHandler) Reply(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req replyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	mode := domain.ReplyFresh
	if req.Mode == string(domain.ReplyRegenerate) {
		mode = domain.ReplyRegenerate
	}

	reply, err := h.orchestrator.DraftReply(c.Context(), req.Prompt, user.PersonaOrDefault(), mode)
	if err != nil {
		return err
	}
	return response.OK(c, replyResponse{Reply: reply})
}
