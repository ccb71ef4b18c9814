package services

import (
	"strings"
	"unicode/utf8"

	"civictrack-be/apperrors"
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case min > 0 && n == 0:
		f[field] = field + " is required"
	case n < min:
		f[field] = field + " is too short"
	case max > 0 && n > max:
		f[field] = field + " is too long"
	}
}

func (f fieldErrors) check(ok bool, field, msg string) {
	if !ok {
		if _, exists := f[field]; !exists {
			f[field] = msg
		}
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation(f)
}
