package genai

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("genai: missing API key")

// ErrEmptyResponse is returned when the service answers 200 with no usable payload.
var ErrEmptyResponse = errors.New("genai: empty response")

// StatusError is returned for any non-200 answer from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.IsQuota() {
		return fmt.Sprintf("genai: quota exceeded (HTTP %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("genai: unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsQuota reports whether the service rejected the call for rate or quota reasons.
func (e *StatusError) IsQuota() bool {
	return e != nil && e.StatusCode == http.StatusTooManyRequests
}

// IsQuota reports whether err carries a quota rejection from the service.
func IsQuota(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.IsQuota()
}

// Options tune one text generation. Zero values fall back to the client defaults.
type Options struct {
	Model         string
	MaxTokens     int
	Temperature   float64
	SystemMessage string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

type imageRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}
