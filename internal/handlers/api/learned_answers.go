package api

import (
	"github.com/gofiber/fiber/v3"

	"frontdesk/internal/answers"
	"frontdesk/internal/db"
	"frontdesk/internal/metrics"
	"frontdesk/internal/models"
	"frontdesk/internal/validation"
)

// LearnedAnswerHandler exposes the learned-answer cache via JSON API.
type LearnedAnswerHandler struct {
	db    *db.DB
	cache *answers.Cache
}

// NewLearnedAnswerHandler creates a new learned-answer handler.
func NewLearnedAnswerHandler(database *db.DB, cache *answers.Cache) *LearnedAnswerHandler {
	return &LearnedAnswerHandler{db: database, cache: cache}
}

// List returns all learned answers in insertion order.
func (h *LearnedAnswerHandler) List(c fiber.Ctx) error {
	learned, err := h.db.ListLearnedAnswers(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch learned answers")
	}

	if learned == nil {
		learned = []models.LearnedAnswer{}
	}

	return jsonSuccess(c, fiber.Map{"answers": learned})
}

// Lookup answers a cache-only query from the conversation endpoint: exact
// match first, fuzzy fallback, 404 when nothing clears the threshold.
func (h *LearnedAnswerHandler) Lookup(c fiber.Ctx) error {
	question := c.Query("q")
	if valid, msg := validation.ValidateQuestion(question); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	m, err := h.cache.Lookup(c.Context(), question)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to look up cached answers")
	}
	if m == nil {
		metrics.RecordCacheLookup(metrics.LookupMiss)
		return jsonError(c, fiber.StatusNotFound, "no matching answer")
	}

	if m.Exact {
		metrics.RecordCacheLookup(metrics.LookupExact)
	} else {
		metrics.RecordCacheLookup(metrics.LookupFuzzy)
	}

	return jsonSuccess(c, fiber.Map{
		"answer":           m.Answer.Answer,
		"matched_question": m.Answer.Question,
		"score":            m.Score,
		"exact":            m.Exact,
	})
}
