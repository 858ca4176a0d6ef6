package api

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v3"

	"frontdesk/internal/notify"
	"frontdesk/internal/validation"
)

// AgentHandler lets the conversation endpoint install its reply sink.
type AgentHandler struct {
	registry *notify.Registry
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(registry *notify.Registry) *AgentHandler {
	return &AgentHandler{registry: registry}
}

// RegisterSession installs an HTTP reply sink pointing at the agent's reply
// URL. Registering again replaces the previous sink; the registry holds at
// most one live sink.
func (h *AgentHandler) RegisterSession(c fiber.Ctx) error {
	var body struct {
		ReplyURL string `json:"reply_url"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if valid, msg := validation.ValidateReplyURL(body.ReplyURL); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	h.registry.Register(notify.NewHTTPSink(body.ReplyURL))
	log.Printf("Conversation sink registered: %s", body.ReplyURL)

	return jsonSuccess(c, fiber.Map{"message": "conversation sink registered"})
}
