package types

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrMalformedID is returned when an identifier cannot be parsed
	// into the store's native identifier type.
	ErrMalformedID = errors.New("the requested todo id wasn't a legal identifier")

	// ErrTodoNotFound is returned when an identifier is well-formed but
	// no record exists for it.
	ErrTodoNotFound = errors.New("the requested todo was not found")
)

// ValidationError reports a request parameter that failed validation.
// Validation failures are raised before any store access; store
// failures are never wrapped in one.
type ValidationError struct {
	Param   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
