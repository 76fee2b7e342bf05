package engine

import (
	"errors"

	"github.com/tartampluch/go-together/internal/config"
)

var (
	// ErrInvalidAnchor reports an anchor that does not parse to a valid instant.
	ErrInvalidAnchor = errors.New(config.ErrInvalidAnchor)

	// ErrInvalidDate reports a malformed month/day pair.
	ErrInvalidDate = errors.New(config.ErrInvalidDate)

	// ErrNotRunning is returned by Notifier.Snapshot when no subscription is active.
	ErrNotRunning = errors.New(config.ErrNotRunning)
)
