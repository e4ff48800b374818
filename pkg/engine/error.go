package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a lyrebird-engine API error.
type Error struct {
	// Code is the engine error code.
	Code int `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// ReqID is the request id echoed by the engine, when present.
	ReqID string `json:"reqid,omitempty"`

	// HTTPStatus is the HTTP status code of the response.
	HTTPStatus int `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine: %s (code=%d, reqid=%s, http_status=%d)",
		e.Message, e.Code, e.ReqID, e.HTTPStatus)
}

// IsInvalidParam reports whether the error is a request parameter error.
func (e *Error) IsInvalidParam() bool {
	return e.HTTPStatus == http.StatusBadRequest
}

// IsServerError reports whether the error originated inside the engine.
func (e *Error) IsServerError() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// Retryable reports whether the call may be retried as-is.
func (e *Error) Retryable() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.IsServerError()
}

// AsError attempts to convert an error to *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// apiResponse is the engine's common response envelope.
type apiResponse struct {
	ReqID   string `json:"reqid"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// parseAPIError turns a non-200 response body into an *Error.
func parseAPIError(statusCode int, body []byte) error {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &Error{
			Code:       statusCode,
			Message:    string(body),
			HTTPStatus: statusCode,
		}
	}
	return &Error{
		Code:       resp.Code,
		Message:    resp.Message,
		ReqID:      resp.ReqID,
		HTTPStatus: statusCode,
	}
}

func wrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
