package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/webrag/webrag/pkg/retry"
)

// APIError is a non-200 response from the provider.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider returned %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("provider returned %d", e.StatusCode)
}

func parseAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// Classify maps provider failures onto the executor's retry classes:
// rate limiting gets the fixed quota cooldown, server errors and timeouts
// get exponential backoff, and everything else (bad credentials included)
// is fatal.
func Classify(err error) retry.Class {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return retry.Quota
		case apiErr.StatusCode >= 500:
			return retry.Transient
		default:
			return retry.Fatal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return retry.Transient
	}

	// Connection resets, DNS blips and similar transport failures come
	// through as *url.Error without a status code.
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return retry.Transient
	}

	return retry.Fatal
}
