package tracking

import "errors"

var (
	// ErrInvalidInput is returned for malformed coordinates, empty subject ids,
	// and samples older than the subject's last accepted position. No state is
	// mutated when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by queries against an unknown subject id.
	ErrNotFound = errors.New("subject not found")
)
