package auctionerrors

import (
	"errors"
	"sort"
	"strings"
)

// FieldErrors maps form field names to user-visible validation messages.
// Services return it as an error; handlers re-render the originating form
// with the messages inline.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors when it carries one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
