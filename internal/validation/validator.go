package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns the validator used for request payloads. Rules live in the
// validate tags of the request types.
func New() *validatorv10.Validate {
	return validatorv10.New()
}
