package api

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"frontdesk/internal/answers"
	"frontdesk/internal/config"
	"frontdesk/internal/db"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"
	"frontdesk/internal/validation"
)

// Deliverer routes a supervisor answer to the live conversation.
type Deliverer interface {
	Deliver(ctx context.Context, sessionID string, requestID uuid.UUID, answer string) error
}

// RequestHandler handles the escalation lifecycle via JSON API.
type RequestHandler struct {
	db        *db.DB
	cfg       *config.Config
	cache     *answers.Cache
	deliverer Deliverer
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(database *db.DB, cfg *config.Config, cache *answers.Cache, deliverer Deliverer) *RequestHandler {
	return &RequestHandler{db: database, cfg: cfg, cache: cache, deliverer: deliverer}
}

// Create handles an escalation from the conversation endpoint. The cache is
// consulted first; only on a miss is a new pending request created.
func (h *RequestHandler) Create(c fiber.Ctx) error {
	var body struct {
		Question       string `json:"question"`
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if valid, msg := validation.ValidateQuestion(body.Question); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if _, err := h.db.SweepExpiredRequests(c.Context()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to sweep expired requests")
	}

	m, err := h.cache.Lookup(c.Context(), body.Question)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to look up cached answers")
	}
	if m != nil {
		if m.Exact {
			metrics.RecordCacheLookup(metrics.LookupExact)
		} else {
			metrics.RecordCacheLookup(metrics.LookupFuzzy)
		}
		return jsonSuccess(c, fiber.Map{
			"source":           "cache",
			"answer":           m.Answer.Answer,
			"matched_question": m.Answer.Question,
			"score":            m.Score,
		})
	}
	metrics.RecordCacheLookup(metrics.LookupEscalated)

	var conversationID *string
	if body.ConversationID != "" {
		conversationID = &body.ConversationID
	}

	req, err := h.db.CreateHelpRequest(c.Context(), body.Question, conversationID, h.cfg.RequestTTL)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create help request")
	}

	return jsonSuccess(c, fiber.Map{
		"source":  "escalated",
		"request": req,
	})
}

// ListByStatus returns requests in the given lifecycle state, newest first.
func (h *RequestHandler) ListByStatus(c fiber.Ctx) error {
	status := c.Params("status")
	if !validation.ValidateStatus(status) {
		return jsonError(c, fiber.StatusBadRequest, "invalid status")
	}

	if _, err := h.db.SweepExpiredRequests(c.Context()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to sweep expired requests")
	}

	requests, err := h.db.GetRequestsByStatus(c.Context(), status)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch requests")
	}

	// Ensure non-null array in JSON
	if requests == nil {
		requests = []models.HelpRequest{}
	}

	return jsonSuccess(c, fiber.Map{
		"status":   status,
		"requests": requests,
	})
}

// History returns the most recent requests across all statuses.
func (h *RequestHandler) History(c fiber.Ctx) error {
	limit := h.cfg.HistoryPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return jsonError(c, fiber.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	if limit > 500 {
		limit = 500
	}

	if _, err := h.db.SweepExpiredRequests(c.Context()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to sweep expired requests")
	}

	history, err := h.db.GetRequestHistory(c.Context(), limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch history")
	}

	if history == nil {
		history = []models.HelpRequest{}
	}

	return jsonSuccess(c, fiber.Map{"history": history})
}

// Stats returns request counts by status.
func (h *RequestHandler) Stats(c fiber.Ctx) error {
	if _, err := h.db.SweepExpiredRequests(c.Context()); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to sweep expired requests")
	}

	stats, err := h.db.GetRequestStats(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch stats")
	}

	return jsonSuccess(c, stats)
}

// Answer handles the dashboard resolving a pending request. The request is
// resolved first; delivery to the live conversation happens after and its
// failure does not undo the resolution, only surfaces in the response.
func (h *RequestHandler) Answer(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request id")
	}

	var body struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateAnswer(body.Answer); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	req, err := h.db.ResolveHelpRequest(c.Context(), id, body.Answer)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrRequestNotFound):
			return jsonError(c, fiber.StatusNotFound, "request not found")
		case errors.Is(err, db.ErrRequestTimedOut):
			return jsonError(c, fiber.StatusBadRequest, "this request has timed out and cannot be answered")
		case errors.Is(err, db.ErrRequestAlreadyTerminal):
			return jsonError(c, fiber.StatusConflict, "this request has already been answered")
		default:
			return jsonError(c, fiber.StatusInternalServerError, "failed to resolve request")
		}
	}

	resp := fiber.Map{
		"message":   "request resolved",
		"request":   req,
		"delivered": true,
	}
	if err := h.deliverer.Deliver(c.Context(), req.SessionToken(), req.ID, body.Answer); err != nil {
		// The answer is resolved and cached; the caller needs to know the
		// live session was not reached.
		resp["delivered"] = false
		resp["delivery_error"] = err.Error()
	}

	return jsonSuccess(c, resp)
}
