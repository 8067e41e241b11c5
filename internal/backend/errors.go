package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired means the backend no longer accepts the session's
	// credentials and the user has to log in again.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnavailable wraps transport failures talking to the backend.
	ErrUnavailable = errors.New("backend unavailable")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
