package app

import (
	"errors"
	"fmt"
	"net/http"

	"townhall/api/internal/poll"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// classify turns engine errors into domain errors. Anything it does not
// recognise is returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, poll.ErrValidation):
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, poll.ErrUnknownReference):
		return domainError(http.StatusNotFound, "UNKNOWN_REFERENCE", err.Error(), nil)
	case errors.Is(err, poll.ErrInvalidOption):
		return domainError(http.StatusUnprocessableEntity, "INVALID_OPTION", err.Error(), nil)
	default:
		return err
	}
}
