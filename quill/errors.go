package quill

import "errors"

var (
	// ErrNoChecker signals that no backend has been configured.
	ErrNoChecker = errors.New("quill: checker not configured")
)
