package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNoJobAvailable  = errors.New("no render job available")
	ErrFeatureDisabled = errors.New("concept rendering is disabled for this tenant")
	ErrProviderFailure = errors.New("provider failure")
	ErrTerminalState   = errors.New("render job already in a terminal state")
)
