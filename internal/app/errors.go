package app

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("you do not have permission to perform this action")
	ErrInvalidCredential = errors.New("unable to log in with provided credentials")
	ErrNoAvatar          = &ConflictError{Message: "No avatar to delete."}
)

// ConflictError reports a membership state clash: adding a pair that already
// exists or removing one that does not.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

var (
	ErrAlreadyFavorited  = &ConflictError{Message: "Already favorited."}
	ErrNotFavorited      = &ConflictError{Message: "Not in favorites."}
	ErrAlreadyInCart     = &ConflictError{Message: "Already in shopping cart."}
	ErrNotInCart         = &ConflictError{Message: "Not in shopping cart."}
	ErrAlreadySubscribed = &ConflictError{Message: "Already subscribed."}
	ErrNotSubscribed     = &ConflictError{Message: "Subscription not found."}
	ErrSelfSubscription  = &ConflictError{Message: "You cannot subscribe to yourself."}
)

func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// ValidationError collects messages per input field.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is shorthand for a validation error with a single message.
func FieldError(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when nothing was collected.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
