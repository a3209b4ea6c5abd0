package api

import (
	"errors"
	"fmt"
)

// StaleStateError is returned when a PvP action carried an
// expected_state_index the server no longer holds. The client's view is
// stale: re-fetch room state before retrying, never blind-retry.
type StaleStateError struct {
	Message string
}

func (e *StaleStateError) Error() string {
	if e.Message == "" {
		return "state index is stale"
	}
	return fmt.Sprintf("state index is stale: %s", e.Message)
}

// UnauthorizedError is returned when the session token is missing or
// rejected. The session is invalid; the caller must rejoin.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "session token rejected"
	}
	return fmt.Sprintf("session token rejected: %s", e.Message)
}

// ForbiddenError is returned when the session is valid but not allowed to
// act, e.g. spectators submitting actions or acting out of turn.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "operation not allowed"
	}
	return fmt.Sprintf("operation not allowed: %s", e.Message)
}

// NotFoundError is returned for unknown games, states or rooms.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "resource not found"
	}
	return fmt.Sprintf("resource not found: %s", e.Message)
}

// StatusError covers remaining non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// IsStale reports whether err signals a staleness conflict.
func IsStale(err error) bool {
	var staleErr *StaleStateError
	return errors.As(err, &staleErr)
}

// IsUnauthorized reports whether err signals session invalidation.
func IsUnauthorized(err error) bool {
	var unauthorizedErr *UnauthorizedError
	return errors.As(err, &unauthorizedErr)
}
