// Package validation decodes JSON request bodies and validates them against
// struct tags. Failures come back as *apperror.AppError values ready to be written.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/axdbertuol/carford/apperror"
)

const (
	maxBodyBytes = 1 << 20

	// bcrypt only looks at the first 72 bytes of a password.
	maxPasswordBytes = 72

	asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("password", validatePassword); err != nil {
		panic(err)
	}
	return v
}

// validatePassword requires at least one uppercase letter, one lowercase
// letter, one digit and one punctuation character, in a single pass.
func validatePassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > maxPasswordBytes {
		return false
	}
	var upper, lower, digit, punct bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(asciiPunctuation, r) || unicode.IsPunct(r):
			punct = true
		}
	}
	return upper && lower && digit && punct
}

// Struct validates s and reports every failing field at once.
func Struct(s any) error {
	fields, err := fieldErrors(s, "")
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return apperror.NewValidationError(fields)
}

// fieldErrors runs the struct tags on s, leaving out failures on skip.
func fieldErrors(s any, skip string) ([]apperror.FieldError, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, apperror.NewInternalError("validation failed", err)
	}
	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Field() == skip {
			continue
		}
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return fields, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "password":
		return fmt.Sprintf("must contain an uppercase letter, a lowercase letter, a digit and a punctuation character, and be 8 to 50 characters and at most %d bytes long", maxPasswordBytes)
	default:
		return "is invalid"
	}
}

// Decode reads a JSON body into dst and validates it. A value of the wrong JSON
// type is reported as a field error next to the tag failures of the other
// fields; any other decoding failure is a bad request.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return Struct(dst)
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return apperror.NewBadRequestError("Invalid request body", err)
	}

	// The decoder keeps going past a type error, so the other fields are populated.
	rest, vErr := fieldErrors(dst, typeErr.Field)
	if vErr != nil {
		return vErr
	}
	fields := append([]apperror.FieldError{{
		Field:   typeErr.Field,
		Message: "must be of type " + jsonKind(typeErr.Type),
	}}, rest...)
	return apperror.NewValidationError(fields)
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}
