package db

import "errors"

// Domain-level database error sentinels.
var (
	// Help request errors
	ErrRequestNotFound        = errors.New("help request not found")
	ErrRequestAlreadyTerminal = errors.New("help request has already been answered")
	ErrRequestTimedOut        = errors.New("help request has timed out and cannot be answered")

	// Learned answer errors
	ErrLearnedAnswerNotFound = errors.New("learned answer not found")
)
