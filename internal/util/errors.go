package util

import "errors"

var (
	ErrUnsupportedMode   = errors.New("unsupported quiz mode")
	ErrOptionOverflow    = errors.New("option count exceeds limit")
	ErrMissingField      = errors.New("required field missing")
	ErrSchemaViolation   = errors.New("schema validation failed")
	ErrStoreUnavailable  = errors.New("document store unavailable")
	ErrDeleteMismatch    = errors.New("deleted count differs from computed duplicates")
	ErrFlatVariantOnly   = errors.New("operation only supports A1, A2 and X collections")
	ErrUnknownVariant    = errors.New("unknown quiz variant")
	ErrAlreadySynced     = errors.New("already synchronized")
	ErrUnsupportedSource = errors.New("unsupported input source")
)
