package domain

import "errors"

// Adapter-level errors. Business-rule violations are reported as
// display strings on the snapshot, never through these.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidCommand = errors.New("invalid command parameters")
)
