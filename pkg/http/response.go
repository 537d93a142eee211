package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	GenericErrorMessage = "something went wrong, please try again"
	NetworkErrorMessage = "cannot connect to server"
)

var (
	ErrNetwork      = errors.New(NetworkErrorMessage)
	ErrUnauthorized = errors.New("unauthorized")
	ErrParsingError = errors.New("failed to parse response")

	errEmptyRefreshedToken = errors.New("empty token refreshed")
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// CheckResponse turns a non-2xx answer into *APIError carrying the backend message.
func CheckResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    extractMessage(resp.Body()),
	}
}

func ParseJSONBody[T any](resp *resty.Response) (T, error) {
	var result T
	if err := CheckResponse(resp); err != nil {
		return result, err
	}

	err := json.Unmarshal(resp.Body(), &result)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrParsingError, err)
	}

	return result, nil
}

// UserMessage maps an error to the text shown to the end user.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNetwork):
		return NetworkErrorMessage
	default:
		return GenericErrorMessage
	}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return GenericErrorMessage
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Error != "":
			return payload.Error
		default:
			return GenericErrorMessage
		}
	}

	var str string
	if err := json.Unmarshal(body, &str); err == nil {
		if str == "" {
			return GenericErrorMessage
		}
		return str
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "<") {
		return GenericErrorMessage
	}

	return trimmed
}
