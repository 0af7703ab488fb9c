package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const maxJSONBodyBytes = 1 << 20

var validate = newValidator()

var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[@$!%*?&]`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// decimals are compared as floats so gt/min tags apply to prices
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("password", validatePassword)
	_ = v.RegisterValidation("cents", validateCents)
	return v
}

// validateCents accepts amounts with at most two decimal places.
func validateCents(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(fl.Field().Float()).Exponent() >= -2
	}
	return false
}

func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return passwordCharset.MatchString(value) &&
		passwordLower.MatchString(value) &&
		passwordUpper.MatchString(value) &&
		passwordDigit.MatchString(value) &&
		passwordSpecial.MatchString(value)
}

// DecodeJSONBody decodes a JSON request body into dest and validates it.
// Field failures come back as a validation error whose details list one message per field.
func DecodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Request body is required")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return decodeError(err)
	}
	return Validate(dest)
}

// Validate runs the struct validation rules on dest.
func Validate(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.New(pkgerrors.CodeValidation, "Request body is required")
	case errors.As(err, &typeErr):
		msg := fmt.Sprintf("%s has an invalid type", typeErr.Field)
		if m, ok := lookupMessage(lastSegment(typeErr.Field), "type"); ok {
			msg = m
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Validation failed").WithDetails([]string{msg})
	case errors.As(err, &syntaxErr):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Malformed JSON body")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Validation failed").
			WithDetails([]string{fmt.Sprintf("property %s should not exist", field)})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid request body")
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := make([]string, 0, len(errs))
		seen := map[string]struct{}{}
		for _, fieldErr := range errs {
			msg := validationMessage(fieldErr)
			if _, dup := seen[msg]; dup {
				continue
			}
			seen[msg] = struct{}{}
			details = append(details, msg)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Validation failed")
}

func lastSegment(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}
