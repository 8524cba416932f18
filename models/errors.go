package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeEngineUnavailable = "ENGINE_UNAVAILABLE"
	ErrCodeEngineBusy        = "ENGINE_BUSY"
	ErrCodeTimeout           = "NAVIGATION_TIMEOUT"
	ErrCodeNavigation        = "NAVIGATION_FAILED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// InvalidURLMessage is returned verbatim to clients that send a missing or
// non-YouTube URL.
const InvalidURLMessage = "Please provide a valid YouTube Channel URL."

// RateLimitedMessage is returned verbatim to clients over their request rate.
const RateLimitedMessage = "rate limit exceeded, please slow down"

// codeLabels prefixes client-facing messages so operators can tell failure
// classes apart without reading logs.
var codeLabels = map[string]string{
	ErrCodeInvalidInput:      "invalid input",
	ErrCodeEngineUnavailable: "rendering engine unavailable",
	ErrCodeEngineBusy:        "rendering engine busy",
	ErrCodeTimeout:           "navigation timed out",
	ErrCodeNavigation:        "navigation failed",
	ErrCodeRateLimited:       "rate limited",
	ErrCodeInternal:          "internal error",
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// PublicMessage renders the message shown to API clients: the failure class
// followed by the human-readable detail. The wrapped error is not included.
// Input and rate-limit errors are returned as-is since their messages are
// already client-facing.
func (e *ScrapeError) PublicMessage() string {
	switch e.Code {
	case ErrCodeInvalidInput, ErrCodeRateLimited:
		return e.Message
	}
	label, ok := codeLabels[e.Code]
	if !ok {
		label = codeLabels[ErrCodeInternal]
	}
	if e.Message == "" {
		return label
	}
	return label + ": " + e.Message
}

// ToResponse converts an internal error to the API-facing body.
func (e *ScrapeError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.PublicMessage()}
}

// HTTPStatus translates the error code to an HTTP status code.
func (e *ScrapeError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case ErrCodeEngineBusy:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// AsScrapeError extracts a *ScrapeError from err, wrapping unknown errors
// as ErrCodeInternal.
func AsScrapeError(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	return NewScrapeError(ErrCodeInternal, "unexpected failure while analyzing the channel", err)
}

// HasCode reports whether err carries the given ScrapeError code.
func HasCode(err error, code string) bool {
	var se *ScrapeError
	return errors.As(err, &se) && se.Code == code
}
