package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationMsg renders one field error of a bound request.
func ValidationMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}
