package app

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate is shared across services; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors against JSON field names so clients see the names
	// they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct validates req and converts any violations into a
// field-scoped validation error. It returns nil when req is valid.
func checkStruct(req interface{}) *Error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Internal(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return NewValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please provide a valid email address"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "len":
		switch fe.Field() {
		case "phoneNumber":
			return "Phone number must be 10 digits"
		case "otp":
			return "Code must be 6 digits"
		}
		return "Must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "Must contain only digits"
	case "gt":
		return "Must be greater than " + fe.Param()
	case "lte":
		return "Must be at most " + fe.Param()
	default:
		return "Invalid value"
	}
}

// passwordPolicyViolation checks the minimum-strength policy: at least 8
// characters with an uppercase letter, a lowercase letter, a digit and a
// special character. It returns an empty string when the password passes.
func passwordPolicyViolation(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	switch {
	case !hasUpper:
		return "Password must contain an uppercase letter"
	case !hasLower:
		return "Password must contain a lowercase letter"
	case !hasDigit:
		return "Password must contain a digit"
	case !hasSpecial:
		return "Password must contain a special character"
	}
	return ""
}
