package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSceneBusy          = errors.New("scene generation already in flight")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingCredentials = errors.New("generation provider credentials missing")
	ErrProviderFailure    = errors.New("provider failure")
)
