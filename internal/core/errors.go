package core

import (
	"errors"
	"strings"
)

// Kind classifies a validation failure so callers can react to it without
// matching on message text.
type Kind string

const (
	KindNonPositiveAmount     Kind = "non_positive_amount"
	KindForeignOwnership      Kind = "foreign_ownership"
	KindDuplicateName         Kind = "duplicate_name"
	KindInvalidMonth          Kind = "invalid_month"
	KindNegativeAmount        Kind = "negative_amount"
	KindDuplicateBudgetPeriod Kind = "duplicate_budget_period"
	KindInvalidPeriod         Kind = "invalid_period"
	KindMissingField          Kind = "missing_field"
	KindDuplicateUsername     Kind = "duplicate_username"
	KindDuplicateEmail        Kind = "duplicate_email"
	KindInvalidValue          Kind = "invalid_value"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("duplicate key")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
)

// ValidationError is a client error tied to a single input field.
type ValidationError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field string, kind Kind, message string) *ValidationError {
	return &ValidationError{Field: field, Kind: kind, Message: message}
}

// ValidationErrors collects every field problem found in one request.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when the collection is empty so it can be returned directly.
func (es ValidationErrors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// IsKind reports whether err carries a validation failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Kind == kind {
		return true
	}
	var ves ValidationErrors
	if errors.As(err, &ves) {
		for _, e := range ves {
			if e.Kind == kind {
				return true
			}
		}
	}
	return false
}

// IsValidation reports whether err is a client validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
