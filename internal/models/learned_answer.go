package models

import (
	"time"

	"github.com/google/uuid"
)

// LearnedAnswer is a supervisor-approved answer keyed by the exact question
// text it was given for. AddedAt tracks the last time the answer changed.
type LearnedAnswer struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
	AddedAt   time.Time `json:"added_at"`
}
