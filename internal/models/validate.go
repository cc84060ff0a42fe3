package models

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidContent is returned when a value object fails construction checks.
var ErrInvalidContent = errors.New("invalid content")

var validate = validator.New()

// Validate checks the struct tags of any model value.
func Validate(v any) error {
	return validate.Struct(v)
}
