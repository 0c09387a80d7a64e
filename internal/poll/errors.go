package poll

import "errors"

var (
	// ErrValidation marks malformed input such as a blank question.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownReference marks a poll or option id that does not exist.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrInvalidOption marks an option id that is not part of the addressed poll.
	ErrInvalidOption = errors.New("option does not belong to poll")
)
