package errors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalid          = errors.New("invalid")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrInvalidYAML      = errors.New("invalid yaml")
	ErrStorage          = errors.New("storage error")
	ErrJournal          = errors.New("journal unavailable")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownPanel     = errors.New("unknown panel")
)
