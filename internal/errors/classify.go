package errors

import (
	"errors"
	"net/http"
	"syscall"
)

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser indicates an error the user can fix (bad input, missing args).
	CategoryUser
	// CategoryNotFound indicates a missing procedure or session.
	CategoryNotFound
	// CategorySystem indicates a system-level error (port in use, no terminal).
	CategorySystem
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategoryNotFound:
		return "not_found"
	case CategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrUnknownProcedure) {
		return CategoryNotFound
	}
	if IsUserError(err) {
		return CategoryUser
	}
	if IsSystemError(err) || isSystemLevel(err) {
		return CategorySystem
	}
	return CategoryUnknown
}

// isSystemLevel checks for syscall failures a user cannot fix from input.
func isSystemLevel(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EADDRINUSE, syscall.EACCES, syscall.EPERM, syscall.ENOTTY, syscall.EIO:
			return true
		}
	}
	return errors.Is(err, ErrNotATerminal)
}

// HTTPStatus maps an error to the status code the HTTP API responds with.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrSessionLimit) {
		return http.StatusTooManyRequests
	}
	switch Classify(err) {
	case CategoryUser:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategorySystem:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch Classify(err) {
	case CategoryUnknown:
		if err == nil {
			return 0
		}
		return 1
	case CategoryUser, CategoryNotFound:
		return 2
	default:
		return 3
	}
}

// FormatByCategory returns a user-appropriate error message based on category.
func FormatByCategory(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	switch Classify(err) {
	case CategoryUser, CategoryNotFound:
		if suggestion := GetSuggestion(err); suggestion != "" {
			return msg + "\n\nTry: " + suggestion
		}
		return msg
	case CategorySystem:
		if suggestion := GetSuggestion(err); suggestion != "" {
			return "System error: " + msg + "\n\n" + suggestion
		}
		return "System error: " + msg
	default:
		return msg
	}
}
