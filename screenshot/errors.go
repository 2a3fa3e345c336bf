package screenshot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// APIError is the base error for all failed Snapdock API calls. Callers
// discriminate on the specialized types below with errors.As; responses with
// a status code outside the well-known set are returned as a bare *APIError.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("snapdock: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("snapdock: %s (%s)", e.Message, e.Code)
}

// AuthenticationError is returned when the API rejects the API key (401).
type AuthenticationError struct {
	APIError
}

// RateLimitError is returned when the quota is exhausted (429). RetryAfter
// holds the server's Retry-After hint in seconds, or nil when the header is
// absent or not numeric.
type RateLimitError struct {
	APIError
	RetryAfter *int
}

// ValidationError is returned for malformed requests (400) and for invalid
// client construction. Field names the offending input when known.
type ValidationError struct {
	APIError
	Field string
}

// CaptureError is returned when the remote renderer fails (500, 502, 503).
type CaptureError struct {
	APIError
}

// NetworkError is returned for transport failures and client-side timeouts;
// it carries no HTTP status. Err holds the underlying transport error.
type NetworkError struct {
	APIError
	Err error
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorBody is the wire shape of a structured API error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyError maps a non-2xx response onto the error taxonomy. A body
// that does not decode as a structured error must not mask the HTTP failure
// itself, so decode failures fall back to defaults.
func classifyError(statusCode int, body []byte, header http.Header) error {
	var decoded errorBody
	_ = json.Unmarshal(body, &decoded)

	code := decoded.Error.Code
	if code == "" {
		code = "UNKNOWN_ERROR"
	}
	message := decoded.Error.Message
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", statusCode)
	}

	base := APIError{Code: code, Message: message, StatusCode: statusCode}

	switch statusCode {
	case http.StatusUnauthorized:
		return &AuthenticationError{APIError: base}
	case http.StatusTooManyRequests:
		rateLimitErr := &RateLimitError{APIError: base}
		if v := header.Get("Retry-After"); v != "" {
			if seconds, err := strconv.Atoi(v); err == nil {
				rateLimitErr.RetryAfter = &seconds
			}
		}
		return rateLimitErr
	case http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &CaptureError{APIError: base}
	default:
		return &base
	}
}
