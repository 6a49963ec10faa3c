package resource

import (
	"errors"
	"strings"
	"time"

	"github.com/sushihentaime/blogposts/internal/api"
)

const DefaultTimeout = 6 * time.Second

const (
	ErrorUnknown                       = "Unknown error"
	ErrorCheckNetworkConnection        = "Check network connection."
	UnableToResolveHost                = "Unable to resolve host"
	UnableToDoOperationWithoutInternet = "Can't do that operation without an internet connection"
)

var (
	ErrUnableToResolveHost = errors.New(UnableToResolveHost)
	ErrJobReplaced         = errors.New("job replaced by a newer request")
	ErrJobsCancelled       = errors.New("active jobs cancelled")

	errJobCompleted = errors.New("job completed")
)

var networkErrorMarkers = []string{
	UnableToResolveHost,
	"no such host",
	"connection refused",
	"i/o timeout",
	"network is unreachable",
	"connection reset by peer",
	"Client.Timeout exceeded",
	"context deadline exceeded",
}

// IsNetworkError reports whether msg describes a connectivity failure rather
// than an answer from the server.
func IsNetworkError(msg string) bool {
	for _, marker := range networkErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// errorMessage picks the text shown for a failed call.
func errorMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
