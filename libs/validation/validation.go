// Package validation validates request payloads with JSON field names and english messages
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()

	// Register the english error messages for validation errors.
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)

	registerCustomTranslation(notBlankTag, "{0} cannot be blank")
}

// RegisterStructRule adds a cross-field rule for the given struct types
// Errors the rule reports under tag are translated with message, {0} being the field name.
// Rules must be registered before the first validation, usually from an init function
func RegisterStructRule(rule validator.StructLevelFunc, tag, message string, types ...any) {
	validate.RegisterStructValidation(rule, types...)
	registerCustomTranslation(tag, message)
}

// FieldError is used to indicate an error with a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a payload fails validation
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		messages = append(messages, field.Message)
	}
	return strings.Join(messages, "; ")
}

// IsValidationError reports whether err is a validation failure
func IsValidationError(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr)
}

// Struct validates a struct and returns *Error with translated messages on failure
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := &Error{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		result.Fields = append(result.Fields, FieldError{
			Field:   fe.Namespace(),
			Message: fe.Translate(translator),
		})
	}
	return result
}

func registerCustomTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}
