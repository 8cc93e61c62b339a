package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailpilot/core/port/out"
	"mailpilot/infra/middleware"
	"mailpilot/pkg/apperr"
	"mailpilot/pkg/response"
)

// UserHandler serves the authenticated user's profile and persona.
type UserHandler struct {
	users out.UserRepository
}

func NewUserHandler(users out.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(app fiber.Router) {
	me := app.Group("/me")
	me.Get("/", h.Me)
	me.Get("/persona", h.GetPersona)
	me.Put("/persona", h.UpdatePersona)
}

type personaResponse struct {
	Persona string `json:"persona"`
}

type updatePersonaRequest struct {
	Persona string `json:"persona"`
}

// Me returns the authenticated user. OAuth credentials never serialize.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

// GetPersona returns the reply-drafting persona, falling back to the
// neutral default when none is configured.
func (h *UserHandler) GetPersona(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return response.OK(c, personaResponse{Persona: user.PersonaOrDefault()})
}

// UpdatePersona replaces the stored persona text.
func (h *UserHandler) UpdatePersona(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req updatePersonaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}
	persona := strings.TrimSpace(req.Persona)
	if persona == "" {
		return apperr.MissingField("persona")
	}

	if err := h.users.UpdatePersona(c.Context(), user.ID, persona); err != nil {
		return err
	}
	return response.OK(c, personaResponse{Persona: persona})
}
