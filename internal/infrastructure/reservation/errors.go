package reservation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the reservation service.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("reservation service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("reservation service returned %d", e.StatusCode)
}

type errorBody struct {
	ErrorCode    int    `json:"error_code"`
	ErrorName    string `json:"error_name"`
	ErrorMessage string `json:"error_message"`
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.ErrorMessage != "" {
		apiErr.Name = parsed.ErrorName
		apiErr.Message = parsed.ErrorMessage
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
