package bridge

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the typed failure returned by the upstream client
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Err        string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bridge %d %s: %s", e.StatusCode, e.Err, e.Message)
}

// NewTimeoutError is returned when a single upstream call exceeds its timeout
func NewTimeoutError() *APIError {
	return &APIError{
		StatusCode: http.StatusRequestTimeout,
		Err:        "Timeout",
		Message:    "Request timed out",
	}
}

// NewClientError wraps network and decoding failures
func NewClientError(err error) *APIError {
	message := "Unknown error"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Err:        "BridgeClientError",
		Message:    message,
	}
}

func newStatusError(statusCode int, body []byte) *APIError {
	statusText := http.StatusText(statusCode)
	if statusText == "" {
		statusText = "BridgeError"
	}
	message := string(body)
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", statusCode)
	}
	return &APIError{
		StatusCode: statusCode,
		Err:        statusText,
		Message:    message,
	}
}

// AsAPIError converts any error into an APIError, defaulting to a 500 BridgeError
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	message := "Unknown error"
	if err != nil {
		message = err.Error()
	}
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Err:        "BridgeError",
		Message:    message,
	}
}
