package checkout

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrLocationPending        = errors.New("location request already in flight")
	ErrGeolocationUnsupported = errors.New("geolocation is not supported")
	ErrComposerClosed         = errors.New("checkout composer is closed")
)

// ValidationError carries the reason for every field that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}
