package validation

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// translate converts one validator.FieldError into a user-friendly message.
//
// The field name is part of the message because the same text is also
// recorded under the unkeyed ("") entry, where there is no field next to it.
func (e *Engine) translate(err validator.FieldError) string {
	field := err.Field()

	// ActualTag is the failing rule; Tag would be the alias it was declared through.
	tag := err.ActualTag()

	// Messages registered together with a custom rule win.
	if msg, ok := e.messages[tag]; ok {
		return fmt.Sprintf("%s %s", field, msg)
	}

	var msg string

	switch tag {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		msg = "is required"

	case "min":
		// min means minimum length for strings, slices and maps and minimum value otherwise.
		if isLengthKind(err.Kind()) {
			msg = fmt.Sprintf("must be at least %s %s", err.Param(), lengthUnit(err.Kind()))
		} else {
			msg = fmt.Sprintf("must be at least %s", err.Param())
		}

	case "max":
		if isLengthKind(err.Kind()) {
			msg = fmt.Sprintf("must not exceed %s %s", err.Param(), lengthUnit(err.Kind()))
		} else {
			msg = fmt.Sprintf("must not exceed %s", err.Param())
		}

	case "len":
		if isLengthKind(err.Kind()) {
			msg = fmt.Sprintf("must be exactly %s %s", err.Param(), lengthUnit(err.Kind()))
		} else {
			msg = fmt.Sprintf("must be exactly %s", err.Param())
		}

	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", err.Param())

	case "email":
		msg = "must be a valid email address"

	case "e164":
		msg = "must be a valid phone number with country code"

	case "uuid", "uuid4":
		msg = "must be a valid UUID"

	case "url":
		msg = "must be a valid URL"

	case "alphanum":
		msg = "must contain only letters and numbers"

	case "numeric":
		msg = "must be numeric"

	case "eqfield":
		msg = fmt.Sprintf("must match %s", err.Param())

	case "dive":
		// dive is reported when a nested item of a slice/map fails.
		msg = "some items are invalid"

	default:
		// Tags without a dedicated message keep the tag name to help debugging.
		if err.Param() != "" {
			msg = fmt.Sprintf("is invalid (%s=%s)", tag, err.Param())
		} else {
			msg = fmt.Sprintf("is invalid (%s)", tag)
		}
	}

	return fmt.Sprintf("%s %s", field, msg)
}

func isLengthKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

func lengthUnit(kind reflect.Kind) string {
	if kind == reflect.String {
		return "characters"
	}
	return "items"
}
