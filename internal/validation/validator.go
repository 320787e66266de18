// Package validation wraps go-playground/validator v10 with the custom rules
// and error messages used across the API.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Failures are returned as
// domain.ValidationErrors so the handler layer can map them to 400 without
// importing the validator package.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/wanderlogue/backend/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	coverImagePattern = regexp.MustCompile(`^(https?://.+|data:image/[a-zA-Z]+;base64,)`)
	usernamePattern   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Get returns the shared validator, initialising it on first use.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON name so messages match the request body.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})

		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation("coverimage", func(fl validator.FieldLevel) bool {
			return coverImagePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})

		validate = v
	})
	return validate
}

// Struct validates s and returns domain.ValidationErrors on failure, or nil.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation.Struct: %w", err)
	}

	out := make(domain.ValidationErrors, len(fieldErrs))
	for i, fe := range fieldErrs {
		field := fieldPath(fe)
		out[i] = domain.FieldError{Field: field, Message: translate(fe, field)}
	}
	return out
}

// fieldPath drops the root struct name from the namespace, e.g.
// "Trip.media[0].url" becomes "media[0].url".
func fieldPath(fe validator.FieldError) string {
	_, rest, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return rest
}

var messages = map[string]string{
	"required":   "%s is required",
	"email":      "%s must be a valid email address",
	"coverimage": "%s must be an http(s) URL or a base64 image data URI",
	"username":   "%s may only contain letters, numbers and underscores",
	"latitude":   "%s must be a latitude between -90 and 90",
	"longitude":  "%s must be a longitude between -180 and 180",
}

var messagesWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",

	"excludesall": "%s must not contain any of %q",
}

func translate(fe validator.FieldError, field string) string {
	tag, param := fe.Tag(), fe.Param()

	if tmpl, ok := messages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messagesWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, jsonName(param))
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// jsonName lowercases the first letter of a Go field name referenced by a
// cross-field tag such as gtefield=StartDate.
func jsonName(goField string) string {
	if goField == "" {
		return goField
	}
	return strings.ToLower(goField[:1]) + goField[1:]
}
