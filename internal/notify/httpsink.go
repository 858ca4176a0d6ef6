package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPSink posts supervisor replies to the conversation endpoint's reply URL.
// The agent process receives {session_id, reply} and feeds the text into the
// live voice session.
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a sink that delivers replies to replyURL.
func NewHTTPSink(replyURL string) *HTTPSink {
	return &HTTPSink{
		url: replyURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

// Reply posts the reply text for the given session.
func (s *HTTPSink) Reply(ctx context.Context, sessionID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"reply":      text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach conversation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("conversation endpoint returned HTTP %s", resp.Status)
	}
	return nil
}
