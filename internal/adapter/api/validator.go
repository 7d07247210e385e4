package api

import (
	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate returns validator.ValidationErrors untouched so response.Error can
// turn the first failing field into a message.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
