package application

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrMissingField       = errors.New("missing field")
	ErrEmailInUse         = errors.New("email is already in use")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBMINotFound        = errors.New("bmi record not found")
)

// FieldError names the offending field. Kind is ErrValidation or ErrMissingField.
type FieldError struct {
	Field string
	Kind  error
}

func (e *FieldError) Error() string {
	if e.Kind == ErrMissingField {
		return "missing " + e.Field + " parameter"
	}
	return e.Field + " is required"
}

func (e *FieldError) Unwrap() error { return e.Kind }

func invalid(field string) error { return &FieldError{Field: field, Kind: ErrValidation} }

func missing(field string) error { return &FieldError{Field: field, Kind: ErrMissingField} }
