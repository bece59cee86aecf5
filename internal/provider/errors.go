package provider

import (
	"errors"
	"fmt"
)

// UnavailableError indicates that a provider call failed at the transport
// or API level: a non-2xx status, a timeout, or a payload missing a field
// the operation cannot proceed without (such as a token).
type UnavailableError struct {
	Provider string
	Op       string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider %s unavailable during %s: %v", e.Provider, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err (or any error in its chain) is an
// UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// UnknownProviderError indicates a registry lookup for a key that was
// never registered. This is a configuration or programming error, not a
// transient condition, and is always surfaced immediately.
type UnknownProviderError struct {
	Key string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Key)
}

// IsUnknownProvider reports whether err (or any error in its chain) is an
// UnknownProviderError.
func IsUnknownProvider(err error) bool {
	var ue *UnknownProviderError
	return errors.As(err, &ue)
}
