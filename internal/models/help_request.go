package models

import (
	"time"

	"github.com/google/uuid"
)

// Help request lifecycle states. Transitions are one-way: a pending request
// becomes either resolved or unresolved, never both, and never moves again.
const (
	StatusPending    = "pending"
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// ReasonSupervisorTimeout is recorded when a pending request expires before a
// supervisor answers it.
const ReasonSupervisorTimeout = "Supervisor timeout"

// HelpRequest represents a caller question escalated to a human supervisor.
type HelpRequest struct {
	ID               uuid.UUID  `json:"id"`
	Question         string     `json:"question"`
	ConversationID   *string    `json:"conversation_id"`
	Status           string     `json:"status"` // pending, resolved, unresolved
	Answer           *string    `json:"answer,omitempty"`
	UnresolvedReason *string    `json:"unresolved_reason,omitempty"`
	Notified         bool       `json:"notified"`
	CreatedAt        time.Time  `json:"created_at"`
	TimeoutAt        *time.Time `json:"timeout_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	UnresolvedAt     *time.Time `json:"unresolved_at,omitempty"`
}

// IsPending reports whether the request is still waiting for a supervisor.
func (r *HelpRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsTerminal reports whether the request has reached a final state.
func (r *HelpRequest) IsTerminal() bool {
	return r.Status == StatusResolved || r.Status == StatusUnresolved
}

// Expired reports whether the request's deadline has passed. A request
// without a deadline is treated as always expired.
func (r *HelpRequest) Expired(now time.Time) bool {
	if r.TimeoutAt == nil {
		return true
	}
	return !now.Before(*r.TimeoutAt)
}

// TimeLeft returns the time remaining before expiry, or zero if the deadline
// has already passed.
func (r *HelpRequest) TimeLeft(now time.Time) time.Duration {
	if r.TimeoutAt == nil {
		return 0
	}
	left := r.TimeoutAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// SessionToken returns the conversation correlation token used when delivering
// the answer back to the live session. Requests created without a conversation
// get a synthetic token derived from the request ID.
func (r *HelpRequest) SessionToken() string {
	if r.ConversationID != nil && *r.ConversationID != "" {
		return *r.ConversationID
	}
	return "default_" + r.ID.String()
}

// RequestStats summarises request counts by status. Pending only counts
// requests whose deadline has not passed.
type RequestStats struct {
	Pending    int64 `json:"pending"`
	Resolved   int64 `json:"resolved"`
	Unresolved int64 `json:"unresolved"`
}
