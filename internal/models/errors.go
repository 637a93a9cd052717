package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("booking not found")
	ErrValidation = errors.New("validation failed")
	ErrEnumDecode = errors.New("unknown enum value")
)

// ValidationError names the booking field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s' %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError is returned when a mutation targets an id that is not stored.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record with ID %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// EnumDecodeError reports a stored status string outside its vocabulary.
type EnumDecodeError struct {
	Field string
	Value string
}

func (e *EnumDecodeError) Error() string {
	return fmt.Sprintf("%s: unknown value %q", e.Field, e.Value)
}

func (e *EnumDecodeError) Is(target error) bool { return target == ErrEnumDecode }
