package api

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the server answers 204 or sends no body
// where one was expected.
var ErrEmptyResponse = errors.New("HTTP 204. Returned nothing.")

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

func (e *StatusError) String() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// errorBody collects the fields the server uses to explain a failure.
type errorBody struct {
	ErrorMessage string `json:"error_message"`
	Detail       string `json:"detail"`
	Response     string `json:"response"`
	Error        string `json:"error"`
}

func (b errorBody) message() string {
	switch {
	case b.ErrorMessage != "":
		return b.ErrorMessage
	case b.Detail != "":
		return b.Detail
	case b.Response != "":
		return b.Response
	case b.Error != "":
		return b.Error
	default:
		return "unknown error"
	}
}
