// Package notify routes supervisor answers back into the live conversation
// and writes them through to the learned-answer cache.
package notify

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"frontdesk/internal/db"
	"frontdesk/internal/models"
)

// Notifier error sentinels.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrNoActiveSink  = errors.New("no active conversation sink")
)

// RequestStore is the subset of the lifecycle store the notifier needs.
type RequestStore interface {
	GetHelpRequestByID(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error)
	MarkRequestNotified(ctx context.Context, id uuid.UUID) error
}

// AnswerStore is the subset of the learned-answer store the notifier needs.
type AnswerStore interface {
	UpsertLearnedAnswer(ctx context.Context, question, answer string) error
}

// Notifier validates inbound supervisor answers, caches them under the
// request's original question, and pushes the reply to the live session.
type Notifier struct {
	requests RequestStore
	answers  AnswerStore
	sinks    *Registry
}

// NewNotifier creates a notifier backed by the given stores and sink registry.
func NewNotifier(requests RequestStore, answers AnswerStore, sinks *Registry) *Notifier {
	return &Notifier{requests: requests, answers: answers, sinks: sinks}
}

// Sinks exposes the sink registry so the conversation endpoint can register.
func (n *Notifier) Sinks() *Registry {
	return n.sinks
}

// Deliver routes a supervisor answer for requestID to the live session.
//
// The answer is rejected for unknown requests and for requests that have
// timed out; a supervisor who typed an answer before the deadline but
// submitted after it gets the same rejection. On the happy path the answer is
// cached first and the notified flag set, so learning survives even when the
// final push to the conversation fails. Deliver does not change the request's
// status; resolving is the dashboard's job before it calls here.
func (n *Notifier) Deliver(ctx context.Context, sessionID string, requestID uuid.UUID, answer string) error {
	if sessionID == "" || requestID == uuid.Nil || answer == "" {
		return ErrMissingFields
	}

	req, err := n.requests.GetHelpRequestByID(ctx, requestID)
	if err != nil {
		return err
	}

	if req.Status == models.StatusUnresolved {
		log.Printf("Rejected answer for timed out request %s", requestID)
		return db.ErrRequestTimedOut
	}
	if req.IsPending() {
		// The dashboard should have resolved the request before delivery.
		// Deliver anyway, but make the ordering defect visible.
		log.Printf("Delivering answer for request %s before it was resolved", requestID)
	}

	if err := n.answers.UpsertLearnedAnswer(ctx, req.Question, answer); err != nil {
		return err
	}

	if err := n.requests.MarkRequestNotified(ctx, requestID); err != nil {
		return err
	}

	sink := n.sinks.Current()
	if sink == nil {
		log.Printf("No active conversation sink for request %s; answer cached but not delivered", requestID)
		return ErrNoActiveSink
	}

	return sink.Reply(ctx, sessionID, "I've checked with my supervisor. "+answer)
}
