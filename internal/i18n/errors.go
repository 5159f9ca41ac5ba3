package i18n

import "errors"

var (
	// ErrNoCatalogs is returned when no catalog file is found.
	ErrNoCatalogs = errors.New("i18n: no catalog files found")

	// ErrMissingBaseLocale is returned when the base locale is not loaded.
	ErrMissingBaseLocale = errors.New("i18n: base locale missing")

	// ErrInvalidCatalog is returned for malformed catalog files.
	ErrInvalidCatalog = errors.New("i18n: invalid catalog")
)
