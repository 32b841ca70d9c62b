package types

import "errors"

// Standard errors returned by traduit components. Callers match them with
// errors.Is after unwrapping.
var (
	// ErrNotFound is returned when a source string or translation row does
	// not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrClassNotRegistered is returned when a record type has never been
	// registered with the translatable index.
	ErrClassNotRegistered = errors.New("record class not registered")

	// ErrNoBackingValue signals a structural misconfiguration: a declared
	// translatable field has no backing storage on the record instance.
	// This is a programmer error, never a missing translation.
	ErrNoBackingValue = errors.New("no backing value for translatable field")

	// ErrNotCollecting is returned when translatable values are staged
	// outside an open unit of work.
	ErrNotCollecting = errors.New("collector is not in collecting state")

	// ErrEmptyLocale is returned for operations that require a locale code.
	ErrEmptyLocale = errors.New("locale code must not be empty")

	// ErrEmptyHash is returned for store operations missing a content key.
	ErrEmptyHash = errors.New("source string hash must not be empty")
)
