package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"frontdesk/internal/db"
	"frontdesk/internal/notify"
)

// WebhookHandler receives out-of-band supervisor answers and routes them to
// the live conversation through the notifier.
type WebhookHandler struct {
	deliverer Deliverer
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deliverer Deliverer) *WebhookHandler {
	return &WebhookHandler{deliverer: deliverer}
}

// SupervisorAnswer handles POST /supervisor_answer. The payload carries
// {session_id, answer, request_id}; all three are required.
func (h *WebhookHandler) SupervisorAnswer(c fiber.Ctx) error {
	var body struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if body.SessionID == "" || body.Answer == "" || body.RequestID == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing required fields")
	}

	requestID, err := uuid.Parse(body.RequestID)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := h.deliverer.Deliver(c.Context(), body.SessionID, requestID, body.Answer); err != nil {
		switch {
		case errors.Is(err, notify.ErrMissingFields):
			return jsonError(c, fiber.StatusBadRequest, "missing required fields")
		case errors.Is(err, db.ErrRequestNotFound):
			return jsonError(c, fiber.StatusNotFound, "request not found")
		case errors.Is(err, db.ErrRequestTimedOut):
			return jsonError(c, fiber.StatusBadRequest, "this request has timed out")
		case errors.Is(err, notify.ErrNoActiveSink):
			return jsonError(c, fiber.StatusInternalServerError, "no active conversation session")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "failed to deliver answer")
		}
	}

	return jsonSuccess(c, fiber.Map{"message": "answer delivered"})
}
