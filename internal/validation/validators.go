// Package validation provides small composable checks for form fields.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/educonnect/educonnect-web/internal/errors"
)

// Validator checks a string value and returns a message when it is invalid.
type Validator func(v string) string

// Required rejects blank values.
func Required(msg string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return msg
		}
		return ""
	}
}

// MinLength rejects values shorter than n runes. The value is not trimmed.
func MinLength(n int, msg string) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return msg
		}
		return ""
	}
}

// Pattern rejects trimmed values that do not match re.
func Pattern(re *regexp.Regexp, msg string) Validator {
	return func(v string) string {
		if !re.MatchString(strings.TrimSpace(v)) {
			return msg
		}
		return ""
	}
}

// Equals rejects values that differ from other.
func Equals(other, msg string) Validator {
	return func(v string) string {
		if v != other {
			return msg
		}
		return ""
	}
}

type fieldError struct {
	field string
	msg   string
}

// FieldValidator accumulates errors across fields in the order they were checked.
type FieldValidator struct {
	errs []fieldError
	seen map[string]bool
}

// New creates an empty FieldValidator.
func New() *FieldValidator {
	return &FieldValidator{seen: make(map[string]bool)}
}

func (fv *FieldValidator) add(field, msg string) {
	if fv.seen[field] {
		return
	}
	fv.seen[field] = true
	fv.errs = append(fv.errs, fieldError{field: field, msg: msg})
}

// Validate runs validators against value and keeps the first failure for field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if msg := v(value); msg != "" {
			fv.add(field, msg)
			break
		}
	}
	return fv
}

// Check records msg for field when ok is false.
func (fv *FieldValidator) Check(field string, ok bool, msg string) *FieldValidator {
	if !ok {
		fv.add(field, msg)
	}
	return fv
}

// Errors returns every recorded message keyed by field.
func (fv *FieldValidator) Errors() map[string]string {
	out := make(map[string]string, len(fv.errs))
	for _, e := range fv.errs {
		out[e.field] = e.msg
	}
	return out
}

// Err returns the first recorded failure as a field validation error, or nil.
func (fv *FieldValidator) Err() error {
	if len(fv.errs) == 0 {
		return nil
	}
	first := fv.errs[0]
	return apperrors.ValidationField(first.field, first.msg)
}
