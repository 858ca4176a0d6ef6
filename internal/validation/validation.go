package validation

import (
	"net/url"
	"strings"

	"frontdesk/internal/models"
)

// MaxQuestionLength bounds escalated question text.
const MaxQuestionLength = 1000

// MaxAnswerLength bounds supervisor answer text.
const MaxAnswerLength = 4000

// ValidateStatus checks that a status path parameter names a real lifecycle
// state.
func ValidateStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusResolved, models.StatusUnresolved:
		return true
	}
	return false
}

// ValidateQuestion checks question text for presence and length.
func ValidateQuestion(question string) (bool, string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return false, "Question is required"
	}
	if len(question) > MaxQuestionLength {
		return false, "Question is too long"
	}
	return true, ""
}

// ValidateAnswer checks supervisor answer text for presence and length.
func ValidateAnswer(answer string) (bool, string) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false, "Answer is required"
	}
	if len(answer) > MaxAnswerLength {
		return false, "Answer is too long"
	}
	return true, ""
}

// ValidateReplyURL checks that a reply callback URL is well formed and uses an
// allowed scheme (http/https only). This prevents javascript:, data:, and
// other dangerous URL schemes being registered as sinks.
func ValidateReplyURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "Reply URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
