package types

import "errors"

// Domain errors for record validation
var (
	ErrMissingTitle = errors.New("title is required")
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrUnknownKind  = errors.New("unknown record kind")
)
